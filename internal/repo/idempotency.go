// Package repo – idempotency records.
//
// Replay records let a client retry a redemption with the same
// Idempotency-Key and receive the original response instead of a second
// "invalid or expired" answer.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (user_id, scope, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(scope) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND scope = ? AND key = ? AND expires_at > ?", userID, scope, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key, response string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		UserID:    userID,
		Scope:     scope,
		Key:       key,
		Response:  response,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeIdempotency removes records that expired before now.
func PurgeIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// Replays adapts the idempotency ledger to the redemption handler.
type Replays struct {
	DB  *gorm.DB
	TTL time.Duration
}

// DefaultReplayTTL bounds how long a redemption response can be replayed.
const DefaultReplayTTL = 24 * time.Hour

// Get returns the live record for (userID, scope, key) or (nil, nil).
func (r *Replays) Get(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error) {
	rec, err := GetIdempotency(ctx, r.DB, userID, scope, key, time.Now().UTC())
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// Save stores a response. A concurrent duplicate is not an error: the first
// stored response wins.
func (r *Replays) Save(ctx context.Context, userID, scope, key string, status int, body []byte) error {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultReplayTTL
	}
	_, err := CreateIdempotency(ctx, r.DB, userID, scope, key, string(body), status, ttl)
	if errors.Is(err, ErrDuplicate) {
		return nil
	}
	return err
}
