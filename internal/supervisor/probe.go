package supervisor

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// probeInterval is the pause between readiness polls of a detached process.
const probeInterval = 250 * time.Millisecond

// httpProbe polls url until it answers with a 2xx status or ctx ends. The
// indexer binds its health endpoint only after its database connection is
// up, so a 2xx means fully started.
func httpProbe(ctx context.Context, url string) error {
	client := &http.Client{Timeout: probeInterval * 4}
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building readiness request: %w", err)
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
