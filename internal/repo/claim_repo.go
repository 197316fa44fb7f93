// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Claim
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. The one piece of mechanism that lives
// here is the compare-and-set in UpdateClaimStatus, because the atomicity
// guarantee belongs to the store's write path.
//
// Error semantics:
//   - When a claim is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - UpdateClaimStatus returns ErrStale when the row exists but is no
//     longer pending; callers translate that into their conflict error.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/claimsdesk/claims-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrStale is returned by UpdateClaimStatus when the claim exists but its
// status is no longer pending, i.e. the compare-and-set lost to an earlier
// transition.
var ErrStale = errors.New("claim status is no longer pending")

// CreateClaim inserts a new Claim row. The caller is responsible for having
// assigned ClaimID and Status; CreatedAt defaults to now (UTC) when unset.
func CreateClaim(ctx context.Context, db *gorm.DB, c *domain.Claim) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(c).Error
}

// ListClaims returns all claims in stable insertion order (creation time,
// then claim id as a tiebreaker). When claimID is non-empty the result is
// filtered to that exact id, yielding zero or one row — the detail-view
// filter form of the list operation.
func ListClaims(ctx context.Context, db *gorm.DB, claimID string) ([]domain.Claim, error) {
	q := db.WithContext(ctx).Order("created_at asc, claim_id asc")
	if claimID != "" {
		q = q.Where("claim_id = ?", claimID)
	}
	var out []domain.Claim
	err := q.Find(&out).Error
	return out, err
}

// GetClaim fetches a single claim by its ID. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetClaim(ctx context.Context, db *gorm.DB, claimID string) (*domain.Claim, error) {
	var c domain.Claim
	err := db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateClaimStatus transitions a claim out of pending with an atomic
// compare-and-set: the UPDATE is guarded by status = 'pending', so of any
// number of concurrent transitions on the same claim exactly one can win.
//
// Outcomes:
//   - nil and the updated claim when this call won the transition;
//   - ErrNotFound when no claim with claimID exists;
//   - ErrStale when the claim exists but already left pending.
func UpdateClaimStatus(ctx context.Context, db *gorm.DB, claimID string, status domain.ClaimStatus) (*domain.Claim, error) {
	res := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("claim_id = ? AND status = ?", claimID, domain.StatusPending).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Disambiguate missing row from lost CAS.
		var c domain.Claim
		err := db.WithContext(ctx).Where("claim_id = ?", claimID).First(&c).Error
		if err != nil {
			return nil, err // ErrNotFound for missing rows
		}
		return &c, ErrStale
	}
	return GetClaim(ctx, db, claimID)
}
