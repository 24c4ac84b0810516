// File: internal/browser/cdp/launcher.go
package cdp

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagepilot/internal/browser"
)

var _ browser.Launcher = (*Launcher)(nil)

// Launcher opens persistent chromedp sessions, one browser process per
// session, bound to a profile's user data directory.
type Launcher struct {
	logger        *zap.Logger
	extraArgs     []string
	launchTimeout time.Duration
	locks         *browser.ProfileLocks
}

// NewLauncher creates a session launcher. extraArgs are appended verbatim to
// the browser command line; launchTimeout bounds process start, falling back
// to 30s when non-positive.
func NewLauncher(logger *zap.Logger, extraArgs []string, launchTimeout time.Duration) *Launcher {
	return &Launcher{
		logger:        logger.Named("browser"),
		extraArgs:     extraArgs,
		launchTimeout: launchTimeout,
		locks:         browser.NewProfileLocks(),
	}
}

// Launch starts a browser process against the profile's storage directory and
// returns a session wrapping its first tab. The profile lock is held until
// the session is closed.
func (l *Launcher) Launch(ctx context.Context, opts browser.SessionOptions) (browser.Session, error) {
	release, err := l.locks.Acquire(ctx, opts.UserDataDir)
	if err != nil {
		return nil, fmt.Errorf("acquiring profile lock: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, l.allocatorOptions(opts)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	opTimeout := opts.Timeout
	if opTimeout <= 0 {
		opTimeout = 30 * time.Second
	}
	s := &Session{
		ctx:       tabCtx,
		cancel:    func() { tabCancel(); allocCancel() },
		release:   release,
		logger:    l.logger.With(zap.String("user_data_dir", opts.UserDataDir)),
		opTimeout: opTimeout,
	}

	// Confirm the process starts and responds before handing the session out.
	launchTimeout := l.launchTimeout
	if launchTimeout <= 0 {
		launchTimeout = 30 * time.Second
	}
	testCtx, cancelTest := context.WithTimeout(tabCtx, launchTimeout)
	defer cancelTest()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	if p := opts.Proxy; p != nil && p.Username != "" {
		if err := enableProxyAuth(tabCtx, p.Username, p.Password); err != nil {
			s.Close(ctx)
			return nil, fmt.Errorf("enabling proxy authentication: %w", err)
		}
	}

	l.logger.Info("Browser session launched",
		zap.String("user_data_dir", opts.UserDataDir),
		zap.Bool("headless", opts.Headless),
		zap.String("channel", opts.Channel),
	)
	return s, nil
}

// allocatorOptions assembles the launch flags for a persistent, automation
// friendly browser instance.
func (l *Launcher) allocatorOptions(opts browser.SessionOptions) []chromedp.ExecAllocatorOption {
	// Start from the defaults; the later flag value wins, which drops the
	// banner that advertises automation.
	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	out = append(out, chromedp.Flag("enable-automation", false))

	width, height := opts.ViewportWidth, opts.ViewportHeight
	if width <= 0 || height <= 0 {
		width, height = 1280, 800
	}

	out = append(out,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserDataDir(opts.UserDataDir),
		chromedp.WindowSize(width, height),
	)

	if path := findExecPath(opts.Channel); path != "" {
		out = append(out, chromedp.ExecPath(path))
	}

	if p := opts.Proxy; p != nil && p.Server != "" {
		out = append(out, chromedp.ProxyServer(p.Server))
	}

	for _, arg := range l.extraArgs {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			out = append(out, chromedp.Flag(name, parts[1]))
		} else {
			out = append(out, chromedp.Flag(name, true))
		}
	}

	// Flags required for running inside containers.
	if runtime.GOOS == "linux" {
		out = append(out,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	return out
}

// findExecPath locates the binary for a non-default channel. An empty return
// leaves chromedp to its own lookup, which finds Chrome.
func findExecPath(channel string) string {
	if channel != "msedge" {
		return ""
	}
	for _, name := range []string{"microsoft-edge", "microsoft-edge-stable", "msedge"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
