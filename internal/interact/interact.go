// File: internal/interact/interact.go
// Best-effort text injection into a moving-target editable node. The target
// lives deep inside a client-rendered tree with unstable class names, so the
// engine walks an ordered list of locator candidates, places the caret
// through DOM manipulation only (a click would pop the site's composer
// dialog), and tries progressively blunter injection techniques.
package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/pagepilot/internal/browser"
)

const (
	// candidateWait bounds the visibility probe for one locator candidate.
	candidateWait = 3 * time.Second
	// settleDelay lets the page react after scrolling the target into view.
	settleDelay = 400 * time.Millisecond
	// nudgeDelay follows the between-round scroll nudge.
	nudgeDelay = 600 * time.Millisecond
)

// focusScript collapses a selection range to the end of the matched node's
// content and focuses its nearest content-editable ancestor. No synthetic
// click is dispatched.
const focusScript = `(() => {
	const el = document.querySelector(%q);
	if (!el) return false;
	let host = el;
	while (host && host.getAttribute && host.getAttribute('contenteditable') !== 'true') {
		host = host.parentElement;
	}
	const target = host || el;
	target.focus({ preventScroll: true });
	const range = document.createRange();
	range.selectNodeContents(el);
	range.collapse(false);
	const sel = window.getSelection();
	sel.removeAllRanges();
	sel.addRange(range);
	return true;
})()`

// execInsertScript is the last-resort injection: an insertText edit command
// followed by a synthetic input event, for editors that only react to their
// own input-event pipeline.
const execInsertScript = `(() => {
	const ok = document.execCommand('insertText', false, %q);
	const active = document.activeElement;
	if (active) {
		active.dispatchEvent(new InputEvent('input', { bubbles: true, data: %q, inputType: 'insertText' }));
	}
	return ok;
})()`

const scrollIntoViewScript = `(() => {
	const el = document.querySelector(%q);
	if (!el) return false;
	el.scrollIntoView({ block: 'center' });
	return true;
})()`

const nudgeScript = `window.scrollBy(0, Math.round(window.innerHeight * 0.6))`

// Engine performs the retry loop.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an interaction engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("interact")}
}

// InsertText tries to place the caret inside the first matching candidate and
// inject the text, for up to maxRounds full passes over the candidate list
// with a viewport nudge between rounds. It reports success; it never fails
// the caller, since a screenshot of the page is still useful without the
// injection.
func (e *Engine) InsertText(ctx context.Context, page browser.Page, candidates []string, text string, maxRounds int) bool {
	if len(candidates) == 0 || text == "" {
		return false
	}
	if maxRounds <= 0 {
		maxRounds = 1
	}

	for round := 1; round <= maxRounds; round++ {
		if ctx.Err() != nil {
			return false
		}
		log := e.logger.With(zap.Int("round", round))

		for i, candidate := range candidates {
			if err := page.WaitVisible(ctx, candidate, candidateWait); err != nil {
				// A missing candidate is expected churn, not a failure of the
				// engine; move on to the next strategy.
				log.Debug("Locator candidate not visible", zap.Int("candidate", i), zap.Error(err))
				continue
			}

			if n, err := page.Count(ctx, candidate); err == nil && n > 1 {
				// Ambiguous locator; the caret lands in the first match.
				log.Debug("Locator matches multiple nodes", zap.Int("candidate", i), zap.Int("matches", n))
			}

			if err := page.Evaluate(ctx, fmt.Sprintf(scrollIntoViewScript, candidate), nil); err != nil {
				log.Debug("Scroll into view failed", zap.Int("candidate", i), zap.Error(err))
				continue
			}
			sleep(ctx, settleDelay)

			var focused bool
			if err := page.Evaluate(ctx, fmt.Sprintf(focusScript, candidate), &focused); err != nil || !focused {
				log.Debug("Caret placement failed", zap.Int("candidate", i), zap.Error(err))
				continue
			}

			if method, ok := e.inject(ctx, page, text); ok {
				log.Info("Text injected",
					zap.Int("candidate", i),
					zap.String("selector", candidate),
					zap.String("method", method),
				)
				return true
			}
		}

		// Nothing matched this round; nudge the viewport and retry. Lazily
		// rendered feeds often mount the composer only once it scrolls near.
		if round < maxRounds {
			if err := page.Evaluate(ctx, nudgeScript, nil); err != nil {
				e.logger.Debug("Viewport nudge failed", zap.Error(err))
			}
			sleep(ctx, nudgeDelay)
		}
	}

	e.logger.Warn("Text injection failed after all rounds", zap.Int("rounds", maxRounds))
	return false
}

// inject tries the injection techniques in order of preference and returns
// the first one that does not raise.
func (e *Engine) inject(ctx context.Context, page browser.Page, text string) (string, bool) {
	if err := page.InsertText(ctx, text); err == nil {
		return "insert-text", true
	} else {
		e.logger.Debug("Keyboard insert-text failed", zap.Error(err))
	}

	if err := page.TypeText(ctx, text); err == nil {
		return "type", true
	} else {
		e.logger.Debug("Keyboard type failed", zap.Error(err))
	}

	script := fmt.Sprintf(execInsertScript, text, text)
	if err := page.Evaluate(ctx, script, nil); err == nil {
		return "exec-command", true
	} else {
		e.logger.Debug("Script insertText failed", zap.Error(err))
	}

	return "", false
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
