// File: internal/runner/executor.go
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/pagepilot/internal/auth"
	"github.com/xkilldash9x/pagepilot/internal/browser"
	"github.com/xkilldash9x/pagepilot/internal/interact"
	"github.com/xkilldash9x/pagepilot/internal/settings"
)

// readinessMarkers are generic structural signals that a client-rendered page
// has mounted. Each wait is bounded and individually non-fatal.
var readinessMarkers = []string{
	"body",
	"main, [role='main'], #root, #app",
}

const readinessWait = 5 * time.Second

// EnvUser and EnvPass are the environment fallbacks for profile credentials.
const (
	EnvUser = "PAGEPILOT_USER"
	EnvPass = "PAGEPILOT_PASS"
)

// Executor runs a single task end to end: session launch, optional login,
// navigation, best-effort interaction, artifact capture.
type Executor struct {
	doc      *settings.Document
	launcher browser.Launcher
	auth     *auth.Engine
	interact *interact.Engine
	logger   *zap.Logger
	// dataRoot overrides the user data directory root; empty means platform
	// default.
	dataRoot string
}

// NewExecutor wires an executor for one run over an immutable settings
// snapshot.
func NewExecutor(
	doc *settings.Document,
	launcher browser.Launcher,
	authEngine *auth.Engine,
	interactEngine *interact.Engine,
	logger *zap.Logger,
	dataRoot string,
) *Executor {
	return &Executor{
		doc:      doc,
		launcher: launcher,
		auth:     authEngine,
		interact: interactEngine,
		logger:   logger.Named("executor"),
		dataRoot: dataRoot,
	}
}

// Execute runs one task. Configuration problems return *ConfigError, login
// failures *AuthError; anything else is an unexpected failure for the
// supervisor to classify. A failed interaction never fails the task.
func (x *Executor) Execute(ctx context.Context, task settings.Task) error {
	log := x.logger.With(zap.String("task", task.Name))

	profile := x.doc.ProfileByName(task.ProfileName)
	if profile == nil {
		return configErrorf("profile %q not found for task %q", task.ProfileName, task.Name)
	}

	targetURL, err := ResolveTargetURL(x.doc, task)
	if err != nil {
		return err
	}

	base := task.ScreenshotPathOverride
	if base == "" {
		base = x.doc.ScreenshotPath
	}
	artifact := ArtifactPath(base, profile.Name, task.Name)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	dataDir, err := browser.ResolveUserDataDir(x.dataRoot, profile.UserDataDirName)
	if err != nil {
		return fmt.Errorf("resolving user data dir: %w", err)
	}

	opts := browser.SessionOptions{
		UserDataDir:    dataDir,
		Headless:       x.doc.Headless,
		Channel:        x.doc.Browser,
		Timeout:        x.doc.Timeout.Std(),
		ViewportWidth:  1280,
		ViewportHeight: 800,
	}
	if profile.Proxy.Enabled && profile.Proxy.Server != "" {
		opts.Proxy = &browser.ProxyOptions{
			Server:   profile.Proxy.Server,
			Username: profile.Proxy.Username,
			Password: profile.Proxy.Password,
		}
	}

	session, err := x.launcher.Launch(ctx, opts)
	if err != nil {
		return fmt.Errorf("launching session: %w", err)
	}
	defer session.Close(ctx)

	if task.UseCredentials {
		outcome := x.auth.Ensure(ctx, session, x.descriptor(), resolveCredentials(profile))
		if outcome.Failed() {
			return &AuthError{Reason: outcome.Reason, Msg: outcome.Message}
		}
		log.Info("Authentication settled", zap.String("outcome", outcome.Status.String()))
	} else {
		log.Info("Skipping login step (task does not use credentials)")
	}

	// A slow page is not a dead page: tolerate the navigation timeout and
	// work with whatever loaded.
	if err := session.Navigate(ctx, targetURL, browser.WaitNetworkIdle, x.doc.Timeout.Std()); err != nil {
		if !browser.IsTimeout(err) {
			return fmt.Errorf("navigating to %s: %w", targetURL, err)
		}
		log.Warn("Navigation timed out, proceeding with partial page state", zap.String("url", targetURL))
	}

	for _, marker := range readinessMarkers {
		if err := session.WaitVisible(ctx, marker, readinessWait); err != nil {
			log.Debug("Readiness marker not observed", zap.String("marker", marker), zap.Error(err))
		}
	}

	if in := x.doc.Interaction; in.Text != "" {
		if ok := x.interact.InsertText(ctx, session, in.Selectors, in.Text, in.MaxRounds); !ok {
			log.Warn("Proceeding without confirmed interaction")
		}
	}

	if err := session.Screenshot(ctx, artifact, true); err != nil {
		return fmt.Errorf("capturing screenshot: %w", err)
	}
	log.Info("Screenshot saved", zap.String("path", artifact))
	return nil
}

// descriptor maps the document's login settings onto the auth engine's input.
func (x *Executor) descriptor() auth.Descriptor {
	l := x.doc.Login
	d := auth.Descriptor{
		URL:               l.URL,
		UserSelector:      l.UserSelector,
		PassSelector:      l.PassSelector,
		SubmitSelector:    l.SubmitSelector,
		LoggedInSelector:  l.LoggedInSelector,
		LandingSelector:   l.LandingSelector,
		TwoFactorSelector: l.TwoFactorSelector,
		WaitTimeout:       l.WaitTimeout.Std(),
	}
	for _, ke := range l.KnownErrors {
		d.KnownErrors = append(d.KnownErrors, auth.Detector{Selector: ke.Selector, Message: ke.Message})
	}
	return d
}

// resolveCredentials resolves a profile's credential pair, falling back to
// the environment per value.
func resolveCredentials(profile *settings.Profile) auth.Credentials {
	user := profile.Credentials.User
	if user == "" {
		user = os.Getenv(EnvUser)
	}
	pass := profile.Credentials.Pass
	if pass == "" {
		pass = os.Getenv(EnvPass)
	}
	return auth.Credentials{Username: user, Password: pass}
}
