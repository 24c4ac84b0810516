// File: internal/browser/types.go
package browser

import (
	"context"
	"time"
)

// WaitUntil names the load condition a navigation waits for.
type WaitUntil int

const (
	// WaitDOMContentLoaded resolves once the document is parsed and the body
	// is attached; client-side rendering may still be in flight.
	WaitDOMContentLoaded WaitUntil = iota
	// WaitNetworkIdle resolves once in-flight network activity has been quiet
	// for a settle window after the page load.
	WaitNetworkIdle
)

// Page is the contract the automation engines drive a browser tab through.
// Every blocking operation takes a context for cancellation and an explicit
// upper bound; a missed bound surfaces as an error matching ErrWaitTimeout so
// callers can apply their fatal/non-fatal policies.
type Page interface {
	// Navigate loads the URL and waits for the requested load condition.
	Navigate(ctx context.Context, url string, until WaitUntil, timeout time.Duration) error
	// WaitVisible blocks until the first match for the selector is visible.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// IsVisible probes visibility without treating absence as an error: a
	// timeout yields (false, nil); only genuine I/O failures return an error.
	IsVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error)
	// Fill replaces the value of the matched input field.
	Fill(ctx context.Context, selector, value string, timeout time.Duration) error
	// Click clicks the first visible match for the selector.
	Click(ctx context.Context, selector string, timeout time.Duration) error
	// InnerText returns the rendered text of the first match.
	InnerText(ctx context.Context, selector string, timeout time.Duration) (string, error)
	// Count returns how many nodes currently match the selector.
	Count(ctx context.Context, selector string) (int, error)
	// InsertText injects literal text at the current focus via the keyboard
	// insert primitive, without per-key events.
	InsertText(ctx context.Context, text string) error
	// TypeText dispatches the text as individual key events to the focused
	// element.
	TypeText(ctx context.Context, text string) error
	// Evaluate runs a script in page context, optionally unmarshaling the
	// result into out (pass nil to discard).
	Evaluate(ctx context.Context, script string, out any) error
	// WaitIdle blocks until the page's network activity has been quiet for a
	// settle window, bounded by timeout.
	WaitIdle(ctx context.Context, timeout time.Duration) error
	// Screenshot captures the page to the path, creating parent directories.
	Screenshot(ctx context.Context, path string, fullPage bool) error
}

// Session is a live browser tab plus the process resources behind it.
type Session interface {
	Page
	Close(ctx context.Context) error
}

// Launcher opens persistent sessions. The production implementation lives in
// the cdp subpackage; tests substitute fakes.
type Launcher interface {
	Launch(ctx context.Context, opts SessionOptions) (Session, error)
}

// ProxyOptions carries per-profile proxy settings into a session launch.
type ProxyOptions struct {
	Server   string
	Username string
	Password string
}

// SessionOptions describes one persistent session launch.
type SessionOptions struct {
	// UserDataDir is the resolved on-disk storage directory for the profile.
	UserDataDir string
	Headless    bool
	// Channel selects the browser binary: "chrome" or "msedge".
	Channel string
	// Timeout is the default bound for session operations that do not carry
	// an explicit one.
	Timeout time.Duration
	ViewportWidth  int
	ViewportHeight int
	Proxy          *ProxyOptions
}
