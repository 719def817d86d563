package app

import (
	"context"
	"net/http"
	"time"
)

// SweepHandler runs one expiry pass on demand and reports what it reclaimed.
// The same operation runs on a timer in the background; an extra invocation
// is harmless.
func (app *application) SweepHandler(w http.ResponseWriter, r *http.Request) {
	result, err := app.orderRepo.ReleaseExpired(r.Context(), time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := SweepResponse{
		ReleasedLocks: result.LocksReleased,
		ExpiredOrders: result.OrdersExpired,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// runSweeper releases expired holds on a fixed interval until the context
// is cancelled.
func (app *application) runSweeper(ctx context.Context) {
	if app.config.sweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			result, err := app.orderRepo.ReleaseExpired(sweepCtx, time.Now())
			cancel()

			if err != nil {
				app.logger.Error("expiry sweep failed", "error", err)
				continue
			}

			if result.LocksReleased > 0 || result.OrdersExpired > 0 {
				app.logger.Info("expiry sweep completed",
					"locks_released", result.LocksReleased,
					"orders_expired", result.OrdersExpired)
			}
		}
	}
}
