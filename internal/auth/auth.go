// File: internal/auth/auth.go
// The authentication engine drives a session to a logged-in state against a
// page with no single reliable completion signal. It races several weak
// signals (network idle, logged-in indicator, post-login landing, two-factor
// prompt) and finishes with a scan for known error banners, which is more
// robust than awaiting any one fixed condition.
package auth

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/pagepilot/internal/browser"
)

const (
	// probeTimeout bounds the pre-navigation "already logged in" check.
	probeTimeout = 1200 * time.Millisecond
	// detectorTimeout bounds each known-error banner probe.
	detectorTimeout = 700 * time.Millisecond
)

// Detector pairs a selector with the exact message fragment that marks a
// login failure banner.
type Detector struct {
	Selector string
	Message  string
}

// Descriptor tells the engine where to log in and which signals to watch.
// Optional selectors are empty when unconfigured.
type Descriptor struct {
	URL               string
	UserSelector      string
	PassSelector      string
	SubmitSelector    string
	LoggedInSelector  string
	LandingSelector   string
	TwoFactorSelector string
	KnownErrors       []Detector
	WaitTimeout       time.Duration
}

// Credentials is the resolved username/password pair for one profile.
type Credentials struct {
	Username string
	Password string
}

// Engine establishes authenticated sessions.
type Engine struct {
	logger *zap.Logger
	// diagnosticsDir receives screenshots when the login race fails.
	diagnosticsDir string
	// notify surfaces operator-facing messages (two-factor intervention).
	notify func(string)
}

// NewEngine creates an authentication engine. notify may be nil.
func NewEngine(logger *zap.Logger, diagnosticsDir string, notify func(string)) *Engine {
	if diagnosticsDir == "" {
		diagnosticsDir = "artifacts"
	}
	return &Engine{
		logger:         logger.Named("auth"),
		diagnosticsDir: diagnosticsDir,
		notify:         notify,
	}
}

// signalKind identifies one waiter in the post-submit race.
type signalKind int

const (
	kindIdle signalKind = iota
	kindLoggedIn
	kindLanding
	kindTwoFactor
)

func (k signalKind) String() string {
	switch k {
	case kindLoggedIn:
		return "logged-in indicator"
	case kindLanding:
		return "post-login landing"
	case kindTwoFactor:
		return "two-factor prompt"
	default:
		return "network idle"
	}
}

// Ensure drives the session to an authenticated state and classifies the
// terminal outcome. It never panics and never returns a Go error: every
// failure mode is a tagged Outcome.
func (e *Engine) Ensure(ctx context.Context, page browser.Page, d Descriptor, creds Credentials) Outcome {
	// A visible logged-in indicator short-circuits everything, including the
	// credential check: the persistent profile already carries a session.
	if d.LoggedInSelector != "" {
		visible, err := page.IsVisible(ctx, d.LoggedInSelector, probeTimeout)
		if err != nil {
			return failure(ReasonSessionError, "probing logged-in indicator: %v", err)
		}
		if visible {
			e.logger.Info("Already logged in, skipping login flow")
			return Outcome{Status: StatusAlreadyAuthenticated}
		}
	}

	if strings.TrimSpace(creds.Username) == "" || strings.TrimSpace(creds.Password) == "" {
		return failure(ReasonMissingCredentials,
			"Credentials missing: set profile credentials or the PAGEPILOT_USER/PAGEPILOT_PASS environment variables")
	}

	e.logger.Info("Navigating to login page", zap.String("url", d.URL))
	if err := page.Navigate(ctx, d.URL, browser.WaitDOMContentLoaded, d.WaitTimeout); err != nil {
		if browser.IsTimeout(err) {
			return failure(ReasonNavigationTimeout, "login page did not load within %s", d.WaitTimeout)
		}
		return failure(ReasonSessionError, "navigating to login page: %v", err)
	}

	// The fields must be genuinely visible, not merely attached, before fill.
	for _, sel := range []string{d.UserSelector, d.PassSelector} {
		if err := page.WaitVisible(ctx, sel, d.WaitTimeout); err != nil {
			return failure(ReasonSessionError, "waiting for login field %q: %v", sel, err)
		}
	}
	if err := page.Fill(ctx, d.UserSelector, creds.Username, d.WaitTimeout); err != nil {
		return failure(ReasonSessionError, "filling username: %v", err)
	}
	if err := page.Fill(ctx, d.PassSelector, creds.Password, d.WaitTimeout); err != nil {
		return failure(ReasonSessionError, "filling password: %v", err)
	}

	// Arm the race before submitting so no signal can fire unobserved.
	race := e.armRace(ctx, page, d)

	e.logger.Info("Submitting login")
	if err := page.Click(ctx, d.SubmitSelector, d.WaitTimeout); err != nil {
		return failure(ReasonSessionError, "clicking submit: %v", err)
	}

	winner, ok := race.winner()
	if !ok {
		e.captureDiagnostic(ctx, page, "login_wait_error")
		return failure(ReasonLoginWaitTimeout, "no login completion signal within %s", d.WaitTimeout)
	}
	e.logger.Debug("Login race settled", zap.String("winner", winner.String()))

	loggedInArmed := d.LoggedInSelector != ""

	if winner == kindTwoFactor {
		e.notifyf("Two-factor authentication required. Complete it manually in the browser window.")
		if loggedInArmed {
			// Wait for the manual intervention to finish. Its own timeout is
			// the terminal failure here, not a new failure kind.
			if err := race.await(kindLoggedIn); err != nil {
				return failure(ReasonLoginWaitTimeout, "two-factor confirmation did not appear within %s", d.WaitTimeout)
			}
		}
		return Outcome{Status: StatusTwoFactorRequired}
	}

	if loggedInArmed && winner != kindLoggedIn {
		// Best effort confirmation. Idle or the landing page already won the
		// race; the indicator never appearing does not undo that.
		if err := race.await(kindLoggedIn); err != nil {
			e.logger.Debug("Logged-in indicator never confirmed", zap.Error(err))
		}
	}

	// A success signal does not override a visible error banner.
	for _, det := range d.KnownErrors {
		visible, err := page.IsVisible(ctx, det.Selector, detectorTimeout)
		if err != nil || !visible {
			continue
		}
		text, err := page.InnerText(ctx, det.Selector, detectorTimeout)
		if err == nil && strings.Contains(text, det.Message) {
			return failure(ReasonKnownLoginError, "%s", det.Message)
		}
	}

	e.logger.Info("Login complete")
	return Outcome{Status: StatusAuthenticated}
}

// armRace launches one waiter goroutine per configured signal, each bounded
// by the descriptor's wait timeout. Network idle is always armed.
func (e *Engine) armRace(ctx context.Context, page browser.Page, d Descriptor) *signalRace {
	waiters := []struct {
		kind signalKind
		sel  string
	}{
		{kindLoggedIn, d.LoggedInSelector},
		{kindLanding, d.LandingSelector},
		{kindTwoFactor, d.TwoFactorSelector},
	}

	r := &signalRace{
		results: make(chan raceResult, 4),
		settled: make(map[signalKind]error),
	}

	r.armed++
	go func() {
		r.results <- raceResult{kindIdle, page.WaitIdle(ctx, d.WaitTimeout)}
	}()

	for _, w := range waiters {
		if w.sel == "" {
			continue
		}
		r.armed++
		go func(kind signalKind, sel string) {
			r.results <- raceResult{kind, page.WaitVisible(ctx, sel, d.WaitTimeout)}
		}(w.kind, w.sel)
	}
	return r
}

func (e *Engine) notifyf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.logger.Warn(msg)
	if e.notify != nil {
		e.notify(msg)
	}
}

// captureDiagnostic saves a screenshot for post-mortem inspection. Failures
// here are logged and dropped; the caller already has a better error.
func (e *Engine) captureDiagnostic(ctx context.Context, page browser.Page, prefix string) {
	name := fmt.Sprintf("%s_%s.png", prefix, time.Now().Format("20060102_150405"))
	path := filepath.Join(e.diagnosticsDir, name)
	if err := page.Screenshot(ctx, path, true); err != nil {
		e.logger.Debug("Failed to capture diagnostic screenshot", zap.Error(err))
		return
	}
	e.logger.Info("Saved diagnostic screenshot", zap.String("path", path))
}

// -- signalRace --

type raceResult struct {
	kind signalKind
	err  error
}

// signalRace collects waiter results. A waiter "settles" when it completes
// without error; waiters that miss their bound report their own timeout and
// drop out of contention.
type signalRace struct {
	results chan raceResult
	armed   int
	settled map[signalKind]error
	taken   int
}

// winner blocks until the first waiter settles successfully and returns its
// kind. It returns false when every armed waiter failed.
func (r *signalRace) winner() (signalKind, bool) {
	for r.taken < r.armed {
		res := <-r.results
		r.taken++
		r.settled[res.kind] = res.err
		if res.err == nil {
			return res.kind, true
		}
	}
	return 0, false
}

// await blocks until the given waiter's result is known and returns its
// error. Calling await for a kind that was never armed returns an error
// rather than blocking forever.
func (r *signalRace) await(kind signalKind) error {
	for {
		if err, ok := r.settled[kind]; ok {
			return err
		}
		if r.taken >= r.armed {
			return fmt.Errorf("waiter %s was never armed", kind)
		}
		res := <-r.results
		r.taken++
		r.settled[res.kind] = res.err
	}
}
