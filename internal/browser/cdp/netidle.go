// File: internal/browser/cdp/netidle.go
package cdp

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// waitNetworkIdle returns an action that resolves once no requests have been
// in flight for the quiet window. Client-rendered pages emit no single "done"
// signal; a quiet network is the closest practical equivalent of the
// network-idle load state.
func waitNetworkIdle(quiet time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var mu sync.Mutex
		inflight := make(map[network.RequestID]struct{})
		last := time.Now()

		lctx, cancel := context.WithCancel(ctx)
		defer cancel()

		chromedp.ListenTarget(lctx, func(ev interface{}) {
			mu.Lock()
			defer mu.Unlock()
			switch e := ev.(type) {
			case *network.EventRequestWillBeSent:
				inflight[e.RequestID] = struct{}{}
				last = time.Now()
			case *network.EventLoadingFinished:
				delete(inflight, e.RequestID)
				last = time.Now()
			case *network.EventLoadingFailed:
				delete(inflight, e.RequestID)
				last = time.Now()
			}
		})

		if err := network.Enable().Do(ctx); err != nil {
			return err
		}

		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				mu.Lock()
				idle := len(inflight) == 0 && time.Since(last) >= quiet
				mu.Unlock()
				if idle {
					return nil
				}
			}
		}
	})
}
