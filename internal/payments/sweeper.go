package payments

import (
	"context"
	"log/slog"
	"time"
)

// SweepStore is the part of the journal the sweeper works on.
type SweepStore interface {
	AbandonStale(ctx context.Context, maxAge time.Duration) (int64, error)
	ListUnordered(ctx context.Context, limit int) ([]Intent, error)
}

// Sweeper closes gateway handoffs that never got a callback and reports
// payments that were taken without an order being placed.
type Sweeper struct {
	Store  SweepStore
	MaxAge time.Duration
	Limit  int
	Log    *slog.Logger
}

type SweepResult struct {
	Abandoned int64
	Unordered []Intent
}

func (s *Sweeper) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// Sweep runs one pass.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	n, err := s.Store.AbandonStale(ctx, s.MaxAge)
	if err != nil {
		return res, err
	}
	res.Abandoned = n

	limit := s.Limit
	if limit <= 0 {
		limit = 100
	}
	res.Unordered, err = s.Store.ListUnordered(ctx, limit)
	if err != nil {
		return res, err
	}
	for _, in := range res.Unordered {
		s.log().Warn("paid intent without order",
			"intent_id", in.ID, "payment_id", in.PaymentID, "user_id", in.UserID,
			"amount_subunits", in.AmountSubunits, "paid_at", in.UpdatedAt)
	}
	return res, nil
}

// Run sweeps every interval until ctx is done. A failed pass is logged and
// retried on the next tick.
func (s *Sweeper) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		if res, err := s.Sweep(ctx); err != nil {
			s.log().Error("sweep failed", "err", err)
		} else if res.Abandoned > 0 {
			s.log().Info("abandoned stale payment intents", "count", res.Abandoned)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
