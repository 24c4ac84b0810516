// File: internal/browser/cdp/session.go
package cdp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagepilot/internal/browser"
)

var _ browser.Session = (*Session)(nil)

// Session drives a single browser tab over CDP. All waits derive from the tab
// context so a dead browser fails every pending operation promptly.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	release func()
	logger  *zap.Logger
	// opTimeout bounds operations whose callers do not carry their own
	// explicit wait budget (keyboard input, script evaluation, screenshots).
	opTimeout time.Duration

	closeOnce sync.Once
}

// run executes actions against the tab, bounded by timeout and cancellable
// through the caller's context. Deadline expiry maps to ErrWaitTimeout so
// callers can tell a missed bound from a hard failure.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(tctx, actions...)
	if err != nil && tctx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", browser.ErrWaitTimeout, err)
	}
	return err
}

// Navigate loads the URL and waits for the requested load condition.
func (s *Session) Navigate(ctx context.Context, url string, until browser.WaitUntil, timeout time.Duration) error {
	s.logger.Debug("Navigating", zap.String("url", url))
	actions := []chromedp.Action{chromedp.Navigate(url)}
	switch until {
	case browser.WaitNetworkIdle:
		actions = append(actions, waitNetworkIdle(idleQuietWindow))
	default:
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}
	return s.run(ctx, timeout, actions...)
}

// WaitVisible blocks until the first match for the selector is visible.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// IsVisible probes visibility. Absence within the bound is (false, nil), not
// an error; only hard browser failures are surfaced.
func (s *Session) IsVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	err := s.WaitVisible(ctx, selector, timeout)
	if err == nil {
		return true, nil
	}
	if browser.IsTimeout(err) {
		return false, nil
	}
	return false, err
}

// Fill clears the matched field and types the value into it.
func (s *Session) Fill(ctx context.Context, selector, value string, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

// Click clicks the first visible match for the selector.
func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// InnerText returns the rendered text of the first match.
func (s *Session) InnerText(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	var text string
	err := s.run(ctx, timeout, chromedp.Text(selector, &text, chromedp.ByQuery))
	return text, err
}

// Count returns how many nodes currently match the selector.
func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	var n int
	script := fmt.Sprintf("document.querySelectorAll(%q).length", selector)
	err := s.run(ctx, s.opTimeout, chromedp.Evaluate(script, &n))
	return n, err
}

// InsertText injects literal text at the current focus in one CDP command.
// No per-key events fire, which keeps rich-text editors from reinterpreting
// the input as user keystrokes.
func (s *Session) InsertText(ctx context.Context, text string) error {
	return s.run(ctx, s.opTimeout, input.InsertText(text))
}

// TypeText dispatches the text as individual key events to the focused
// element.
func (s *Session) TypeText(ctx context.Context, text string) error {
	return s.run(ctx, s.opTimeout, chromedp.KeyEvent(text))
}

// Evaluate runs a script in page context. out may be nil to discard the
// result.
func (s *Session) Evaluate(ctx context.Context, script string, out any) error {
	return s.run(ctx, s.opTimeout, chromedp.Evaluate(script, out))
}

// WaitIdle blocks until network activity has been quiet for the settle
// window, bounded by timeout.
func (s *Session) WaitIdle(ctx context.Context, timeout time.Duration) error {
	return s.run(ctx, timeout, waitNetworkIdle(idleQuietWindow))
}

// Screenshot captures the page to path, creating parent directories.
func (s *Session) Screenshot(ctx context.Context, path string, fullPage bool) error {
	var buf []byte
	var action chromedp.Action
	if fullPage {
		action = chromedp.FullScreenshot(&buf, 90)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := s.run(ctx, s.opTimeout, action); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating screenshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("writing screenshot %s: %w", path, err)
	}
	return nil
}

// Close tears down the tab and the browser process and releases the profile
// lock. Safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		// Ask the browser to shut down cleanly before cancelling contexts.
		if err := chromedp.Cancel(s.ctx); err != nil {
			s.logger.Debug("Graceful browser shutdown failed", zap.Error(err))
		}
		s.cancel()
		s.release()
		s.logger.Debug("Browser session closed")
	})
	return nil
}

const (
	// idleQuietWindow is how long the network must stay quiet before a page
	// counts as idle.
	idleQuietWindow = 500 * time.Millisecond
)
