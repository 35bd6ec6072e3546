package subscriber

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/eigenlog/eigenlog/internal/domain"
)

// drainTimeout bounds how long the shutdown drainer waits for each
// best-effort submission before giving up on it.
const drainTimeout = 5 * time.Second

// drain implements the shutdown drainer (C9): a synchronous, best-effort
// attempt to deliver every batch still sitting in the cache snapshot when
// the shipper is closed. Errors are logged to stderr but never retried --
// the process is exiting regardless.
func drain(ctx context.Context, host domain.Host, app domain.App, sink Sink, pending []pendingBatch) {
	if len(pending) == 0 {
		return
	}

	for _, p := range pending {
		sendCtx, cancel := context.WithTimeout(ctx, drainTimeout)
		err := sink.Send(sendCtx, host, app, p.Severity, p.Batch)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "eigenlog: drain failed for %s/%s/%s: %v\n", host, app, p.Severity, err)
		}
	}
}
