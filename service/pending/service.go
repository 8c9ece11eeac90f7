package pending

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Iamabhih/ikhaya-checkout/model"
)

// pendingTTL is how long a pending order may wait for its webhook before the
// sweep removes it.
const pendingTTL = time.Hour

type IService interface {
	Store(ctx context.Context, pending model.PendingOrder) error
	Get(ctx context.Context, tempOrderID string) (*model.PendingOrder, error)
	Clear(ctx context.Context, tempOrderID string) error
	Claim(ctx context.Context, tempOrderID string) (bool, error)
	PurgeExpired(ctx context.Context) (int, error)
}

func NewService(repo IRepo) IService {
	return &service{
		repo: repo,
	}
}

type service struct {
	repo IRepo
}

// Store persists the snapshot before the browser leaves for the gateway. The
// caller must abort checkout when this fails; redirecting without a stored
// pending order is unrecoverable.
func (s service) Store(ctx context.Context, pending model.PendingOrder) error {
	if pending.TempOrderID == "" {
		return fmt.Errorf("pending: missing temp order id")
	}
	return s.repo.CreatePendingOrder(ctx, pending)
}

// Get returns nil, nil when the record is absent: the caller treats that as
// "already processed or unknown", not as a failure.
func (s service) Get(ctx context.Context, tempOrderID string) (*model.PendingOrder, error) {
	res, err := s.repo.GetPendingOrder(ctx, tempOrderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s service) Clear(ctx context.Context, tempOrderID string) error {
	_, err := s.repo.DeletePendingOrder(ctx, tempOrderID)
	return err
}

// Claim removes the record and reports whether this caller won it. The
// conditional delete is the lock: under concurrent promotion exactly one
// caller gets true, everyone else sees the row already gone.
func (s service) Claim(ctx context.Context, tempOrderID string) (bool, error) {
	return s.repo.DeletePendingOrder(ctx, tempOrderID)
}

// PurgeExpired removes pending orders older than pendingTTL. Entries whose
// age cannot be established are removed too: a row the sweep cannot interpret
// will never be promoted either.
func (s service) PurgeExpired(ctx context.Context) (int, error) {
	all, err := s.repo.ListPendingOrders(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	purged := 0
	for _, p := range all {
		if !isExpired(p, now) {
			continue
		}
		if _, err := s.repo.DeletePendingOrder(ctx, p.TempOrderID); err != nil {
			log.Printf("purge: failed to delete %s: %s", model.PendingOrderKey(p.TempOrderID), err)
			continue
		}
		purged++
	}
	return purged, nil
}

func isExpired(p model.PendingOrder, now time.Time) bool {
	createdAt, ok := creationTime(p)
	if !ok {
		return true
	}
	return now.Sub(createdAt) > pendingTTL
}

// creationTime prefers the stored timestamp and falls back to the millisecond
// timestamp embedded in TEMP-<millis>-<token> ids.
func creationTime(p model.PendingOrder) (time.Time, bool) {
	if p.CreatedAt.Valid {
		return p.CreatedAt.Time, true
	}
	parts := strings.Split(p.TempOrderID, "-")
	if len(parts) < 3 || parts[0] != "TEMP" {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// NewTempOrderID mints a client-style temporary id. Checkout normally brings
// its own; the recovery tool uses this when reconstructing a lost pending
// order.
func NewTempOrderID() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TEMP-%d-%s", time.Now().UnixMilli(), token)
}
