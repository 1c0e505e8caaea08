// Package services contains the server-side business logic: credential
// checks, the revocation ledger, login/logout and the MFA step-up flow.
// Every store round trip is bounded by the configured store timeout, which
// also covers waiting for a free pool connection.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
)

func readCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// writeCtx detaches from the caller's cancellation: once issued, a write
// commits even if the client goes away.
func writeCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return readCtx(context.WithoutCancel(ctx), timeout)
}

func internalErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}
