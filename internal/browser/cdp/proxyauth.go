// File: internal/browser/cdp/proxyauth.go
package cdp

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/chromedp"
)

// enableProxyAuth answers proxy authentication challenges with the profile's
// proxy credentials. The browser itself has no flag for proxy auth, so the
// fetch domain intercepts the challenge and continues each paused request.
func enableProxyAuth(tabCtx context.Context, username, password string) error {
	if err := chromedp.Run(tabCtx, fetch.Enable().WithHandleAuthRequests(true)); err != nil {
		return err
	}

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *fetch.EventAuthRequired:
			go func() {
				c := chromedp.FromContext(tabCtx)
				execCtx := cdp.WithExecutor(tabCtx, c.Target)
				resp := &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: username,
					Password: password,
				}
				_ = fetch.ContinueWithAuth(e.RequestID, resp).Do(execCtx)
			}()
		case *fetch.EventRequestPaused:
			go func() {
				c := chromedp.FromContext(tabCtx)
				execCtx := cdp.WithExecutor(tabCtx, c.Target)
				_ = fetch.ContinueRequest(e.RequestID).Do(execCtx)
			}()
		}
	})
	return nil
}
