// Package payments keeps a Postgres journal of payment-gateway handoffs so a
// gateway callback creates at most one order.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Status string

const (
	StatusOpened    Status = "OPENED"
	StatusPaid      Status = "PAID"
	StatusOrdered   Status = "ORDERED"
	StatusAbandoned Status = "ABANDONED"
)

var ErrIntentNotFound = errors.New("payment intent not found")

type Intent struct {
	ID             string
	SessionID      string
	UserID         string
	AmountSubunits int64
	Currency       string
	Status         Status
	PaymentID      string
	Signature      string
	OrderID        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PlaceFunc creates the order for a paid intent and returns its id.
type PlaceFunc func(ctx context.Context, in Intent) (int64, error)

// DB is the part of *pgxpool.Pool the journal uses.
type DB interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Journal struct{ DB DB }

// Open records a new intent and returns it with its id.
func (j *Journal) Open(ctx context.Context, in Intent) (Intent, error) {
	in.ID = uuid.NewString()
	in.Status = StatusOpened
	err := j.DB.QueryRow(ctx, `
		INSERT INTO payment_intents(id, session_id, user_id, amount_subunits, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		in.ID, in.SessionID, in.UserID, in.AmountSubunits, in.Currency, string(in.Status),
	).Scan(&in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return Intent{}, fmt.Errorf("open intent: %w", err)
	}
	return in, nil
}

// Claim settles intent id with the gateway's payment reference. The row is
// locked (FOR UPDATE) while place runs so concurrent callbacks for the same
// intent serialize; an intent that already produced an order returns that
// order with existed=true and place is not called.
//
// When place fails the payment reference is still committed (status PAID)
// so the payment stays traceable.
func (j *Journal) Claim(ctx context.Context, id, paymentID, signature string, place PlaceFunc) (orderID int64, existed bool, err error) {
	tx, err := j.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	in, err := scanIntent(tx.QueryRow(ctx, selectIntent+` WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return 0, false, err
	}
	if in.Status == StatusOrdered {
		return in.OrderID, true, nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE payment_intents
		SET status=$2, payment_id=$3, signature=$4, updated_at=now()
		WHERE id=$1`, id, string(StatusPaid), paymentID, signature); err != nil {
		return 0, false, fmt.Errorf("mark paid: %w", err)
	}
	in.Status, in.PaymentID, in.Signature = StatusPaid, paymentID, signature

	orderID, perr := place(ctx, in)
	if perr != nil {
		if err := tx.Commit(ctx); err != nil {
			return 0, false, errors.Join(perr, err)
		}
		return 0, false, perr
	}

	if _, err := tx.Exec(ctx, `
		UPDATE payment_intents SET status=$2, order_id=$3, updated_at=now()
		WHERE id=$1`, id, string(StatusOrdered), orderID); err != nil {
		return 0, false, fmt.Errorf("mark ordered: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return orderID, false, nil
}

// AbandonStale marks intents that never got a callback within maxAge.
func (j *Journal) AbandonStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	ct, err := j.DB.Exec(ctx, `
		UPDATE payment_intents SET status=$1, updated_at=now()
		WHERE status=$2 AND created_at < now() - make_interval(secs => $3)`,
		string(StatusAbandoned), string(StatusOpened), maxAge.Seconds())
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// ListUnordered returns intents that were paid but never turned into an
// order, oldest first.
func (j *Journal) ListUnordered(ctx context.Context, limit int) ([]Intent, error) {
	rows, err := j.DB.Query(ctx, selectIntent+` WHERE status=$1 ORDER BY created_at LIMIT $2`, string(StatusPaid), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Intent
	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

const selectIntent = `
	SELECT id::text, session_id, user_id, amount_subunits, currency, status,
	       COALESCE(payment_id, ''), COALESCE(signature, ''), COALESCE(order_id, 0),
	       created_at, updated_at
	FROM payment_intents`

func scanIntent(row pgx.Row) (Intent, error) {
	var in Intent
	var status string
	err := row.Scan(&in.ID, &in.SessionID, &in.UserID, &in.AmountSubunits, &in.Currency, &status,
		&in.PaymentID, &in.Signature, &in.OrderID, &in.CreatedAt, &in.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Intent{}, ErrIntentNotFound
	}
	if err != nil {
		return Intent{}, err
	}
	in.Status = Status(status)
	return in, nil
}
