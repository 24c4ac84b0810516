// File: internal/interact/interact_test.go
package interact

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagepilot/internal/browser"
)

// scriptedPage simulates a lazily rendered page: each selector becomes
// visible only after a configured number of viewport nudges.
type scriptedPage struct {
	// visibleAfterNudges maps selector to the nudge count required before it
	// renders. Selectors absent from the map never render.
	visibleAfterNudges map[string]int
	nudges             int

	insertErr error
	typeErr   error
	execErr   error

	inserted    []string
	typed       []string
	execCalls   int
	focusCalls  int
	scrollCalls int
}

func (p *scriptedPage) isVisible(selector string) bool {
	need, ok := p.visibleAfterNudges[selector]
	return ok && p.nudges >= need
}

func (p *scriptedPage) Navigate(ctx context.Context, url string, until browser.WaitUntil, timeout time.Duration) error {
	return nil
}

func (p *scriptedPage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if p.isVisible(selector) {
		return nil
	}
	return fmt.Errorf("%w: %s", browser.ErrWaitTimeout, selector)
}

func (p *scriptedPage) IsVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	return p.isVisible(selector), nil
}

func (p *scriptedPage) Fill(ctx context.Context, selector, value string, timeout time.Duration) error {
	return nil
}

func (p *scriptedPage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (p *scriptedPage) InnerText(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	return "", nil
}

func (p *scriptedPage) Count(ctx context.Context, selector string) (int, error) {
	if p.isVisible(selector) {
		return 1, nil
	}
	return 0, nil
}

func (p *scriptedPage) InsertText(ctx context.Context, text string) error {
	if p.insertErr != nil {
		return p.insertErr
	}
	p.inserted = append(p.inserted, text)
	return nil
}

func (p *scriptedPage) TypeText(ctx context.Context, text string) error {
	if p.typeErr != nil {
		return p.typeErr
	}
	p.typed = append(p.typed, text)
	return nil
}

func (p *scriptedPage) Evaluate(ctx context.Context, script string, out any) error {
	switch {
	case strings.Contains(script, "scrollBy"):
		p.nudges++
	case strings.Contains(script, "scrollIntoView"):
		p.scrollCalls++
	case strings.Contains(script, "execCommand"):
		p.execCalls++
		return p.execErr
	case strings.Contains(script, "createRange"):
		p.focusCalls++
		if b, ok := out.(*bool); ok {
			*b = true
		}
	}
	return nil
}

func (p *scriptedPage) WaitIdle(ctx context.Context, timeout time.Duration) error { return nil }
func (p *scriptedPage) Screenshot(ctx context.Context, path string, fullPage bool) error {
	return nil
}

func newEngine() *Engine { return NewEngine(zap.NewNop()) }

var candidates = []string{
	"div[role='textbox'][contenteditable='true']",
	"[contenteditable='true']",
	"#composer",
}

func TestInsertText_FirstCandidateFirstRound(t *testing.T) {
	page := &scriptedPage{visibleAfterNudges: map[string]int{candidates[0]: 0}}

	ok := newEngine().InsertText(context.Background(), page, candidates, "hello", 3)
	require.True(t, ok)
	assert.Equal(t, []string{"hello"}, page.inserted)
	assert.Zero(t, page.nudges, "no nudge needed when round one succeeds")
	assert.Equal(t, 1, page.focusCalls)
}

func TestInsertText_LateCandidateNeedsANudge(t *testing.T) {
	// Only the third candidate ever renders, and only once the viewport has
	// been nudged, so the first round must fail and the second succeed.
	page := &scriptedPage{visibleAfterNudges: map[string]int{"#composer": 1}}

	ok := newEngine().InsertText(context.Background(), page, candidates, "hello", 3)
	require.True(t, ok)
	assert.Equal(t, 1, page.nudges)
	assert.Equal(t, []string{"hello"}, page.inserted)
}

func TestInsertText_FallbackOrdering(t *testing.T) {
	page := &scriptedPage{
		visibleAfterNudges: map[string]int{candidates[0]: 0},
		insertErr:          fmt.Errorf("insert rejected"),
		typeErr:            fmt.Errorf("type rejected"),
	}

	ok := newEngine().InsertText(context.Background(), page, candidates, "hello", 1)
	require.True(t, ok, "script injection is the final fallback")
	assert.Empty(t, page.inserted)
	assert.Empty(t, page.typed)
	assert.Equal(t, 1, page.execCalls)
}

func TestInsertText_AllRoundsExhausted(t *testing.T) {
	page := &scriptedPage{visibleAfterNudges: map[string]int{}}

	ok := newEngine().InsertText(context.Background(), page, candidates, "hello", 2)
	assert.False(t, ok)
	assert.Equal(t, 1, page.nudges, "nudges happen between rounds, not after the last")
}

func TestInsertText_AllMethodsFailMovesOn(t *testing.T) {
	page := &scriptedPage{
		visibleAfterNudges: map[string]int{candidates[0]: 0},
		insertErr:          fmt.Errorf("insert rejected"),
		typeErr:            fmt.Errorf("type rejected"),
		execErr:            fmt.Errorf("exec rejected"),
	}

	ok := newEngine().InsertText(context.Background(), page, candidates, "hello", 1)
	assert.False(t, ok)
	assert.Equal(t, 1, page.execCalls)
}

func TestInsertText_DegenerateInputs(t *testing.T) {
	page := &scriptedPage{visibleAfterNudges: map[string]int{candidates[0]: 0}}
	engine := newEngine()

	assert.False(t, engine.InsertText(context.Background(), page, nil, "hello", 3))
	assert.False(t, engine.InsertText(context.Background(), page, candidates, "", 3))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, engine.InsertText(cancelled, page, candidates, "hello", 3))
}

func TestInsertText_ZeroRoundsStillTriesOnce(t *testing.T) {
	page := &scriptedPage{visibleAfterNudges: map[string]int{candidates[0]: 0}}
	assert.True(t, newEngine().InsertText(context.Background(), page, candidates, "hello", 0))
}
