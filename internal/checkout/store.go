package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-storefront/internal/redisx"
)

// Store persists sessions between requests.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	// RememberPayment maps a gateway payment id to the intent it settled and
	// the order it produced.
	RememberPayment(ctx context.Context, paymentID string, p PaidOrder) error
	PaymentOrder(ctx context.Context, paymentID string) (PaidOrder, bool, error)
}

// PaidOrder is what a settled gateway payment produced.
type PaidOrder struct {
	IntentID string
	OrderID  int64
}

type RedisStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func (r *RedisStore) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return redisx.TTLCheckoutSession
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	b, err := redisx.GetBytes(ctx, r.Redis, fmt.Sprintf(redisx.KeyCheckoutSession, id))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrSessionNotFound
	}
	var st stored
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	st.Session.UserID = st.Owner
	return &st.Session, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(stored{Session: *s, Owner: s.UserID})
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, fmt.Sprintf(redisx.KeyCheckoutSession, s.ID), b, r.ttl()).Err()
}

func (r *RedisStore) RememberPayment(ctx context.Context, paymentID string, p PaidOrder) error {
	key := fmt.Sprintf(redisx.KeyIdemPayment, paymentID)
	val := p.IntentID + ":" + strconv.FormatInt(p.OrderID, 10)
	return r.Redis.Set(ctx, key, val, redisx.TTLIdempotency).Err()
}

func (r *RedisStore) PaymentOrder(ctx context.Context, paymentID string) (PaidOrder, bool, error) {
	b, err := redisx.GetBytes(ctx, r.Redis, fmt.Sprintf(redisx.KeyIdemPayment, paymentID))
	if err != nil || b == nil {
		return PaidOrder{}, false, err
	}
	intent, order, ok := strings.Cut(string(b), ":")
	if !ok {
		return PaidOrder{}, false, fmt.Errorf("malformed payment entry %q", b)
	}
	id, err := strconv.ParseInt(order, 10, 64)
	if err != nil {
		return PaidOrder{}, false, err
	}
	return PaidOrder{IntentID: intent, OrderID: id}, true, nil
}
