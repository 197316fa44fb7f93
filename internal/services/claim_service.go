// Package services – ClaimService
//
// This file implements the ClaimService, the single writer of claim status.
// It enforces the review workflow (pending -> approved | rejected, terminal
// states final), validates claim creation, and exposes the read paths the
// API gateway consumes, including the scoped amount summary. Service-level
// errors (ErrClaimNotFound, ErrInvalidStatus, ErrAlreadyProcessed, …) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/claimsdesk/claims-backend/internal/aggregate"
	"github.com/claimsdesk/claims-backend/internal/domain"
	"github.com/claimsdesk/claims-backend/internal/repo"
)

// ClaimRepo defines the repository contract required by ClaimService.
// Implementations are responsible for persistence of claim aggregates and
// for the atomicity of the status compare-and-set.
type ClaimRepo interface {
	// CreateClaim inserts a new claim row.
	CreateClaim(ctx context.Context, db *gorm.DB, c *domain.Claim) error

	// ListClaims returns claims in stable insertion order, optionally
	// filtered to one exact claim id.
	ListClaims(ctx context.Context, db *gorm.DB, claimID string) ([]domain.Claim, error)

	// GetClaim fetches a claim by id.
	GetClaim(ctx context.Context, db *gorm.DB, claimID string) (*domain.Claim, error)

	// UpdateClaimStatus performs the guarded transition out of pending.
	UpdateClaimStatus(ctx context.Context, db *gorm.DB, claimID string, status domain.ClaimStatus) (*domain.Claim, error)
}

// ClaimService provides claim lifecycle operations: creation, listing,
// status transitions, and amount summaries. It is the only component that
// mutates claim status.
type ClaimService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the claim repository used by this service.
	Repo ClaimRepo
}

// NewClaimService constructs a ClaimService.
func NewClaimService(db *gorm.DB, r ClaimRepo) *ClaimService {
	return &ClaimService{DB: db, Repo: r}
}

// CreateClaimInput carries the attributes of a new claim. ClaimID and
// ClaimDate are optional; the service assigns a UUID and the current time
// when they are absent.
type CreateClaimInput struct {
	ClaimID       string
	Type          string
	EmployeeID    string
	EmployeeName  string
	EmployeeEmail string
	Department    string
	ClaimDate     time.Time
	Amount        float64
	Description   string
}

// Create inserts a new claim in pending status. The stored type is the
// caller's value verbatim (only surrounding whitespace is dropped);
// bucketing under the six fixed labels happens at aggregation time.
func (s *ClaimService) Create(ctx context.Context, in CreateClaimInput) (*domain.Claim, error) {
	typ := strings.TrimSpace(in.Type)
	if typ == "" || strings.TrimSpace(in.EmployeeID) == "" || strings.TrimSpace(in.EmployeeName) == "" {
		return nil, ErrMissingFields
	}
	if in.Amount < 0 {
		return nil, ErrInvalidAmount
	}

	id := strings.TrimSpace(in.ClaimID)
	if id == "" {
		id = uuid.NewString()
	}
	when := in.ClaimDate
	if when.IsZero() {
		when = time.Now().UTC()
	}

	c := &domain.Claim{
		ClaimID:       id,
		Type:          typ,
		EmployeeID:    strings.TrimSpace(in.EmployeeID),
		EmployeeName:  strings.TrimSpace(in.EmployeeName),
		EmployeeEmail: strings.TrimSpace(in.EmployeeEmail),
		Department:    strings.TrimSpace(in.Department),
		ClaimDate:     when,
		Amount:        in.Amount,
		Description:   in.Description,
		Status:        domain.StatusPending,
	}
	if err := s.Repo.CreateClaim(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all claims in insertion order; a non-empty claimID narrows
// the result to zero or one element (the detail-view filter).
func (s *ClaimService) List(ctx context.Context, claimID string) ([]domain.Claim, error) {
	return s.Repo.ListClaims(ctx, s.DB, claimID)
}

// UpdateStatus transitions a claim from pending to the requested terminal
// status.
//
// Semantics:
//   - status must be "approved" or "rejected"; otherwise ErrInvalidStatus.
//   - claimID must exist; otherwise ErrClaimNotFound.
//   - A claim already in a terminal state yields ErrAlreadyProcessed, never
//     a silent success.
//   - A successful transition is durably visible before the call returns;
//     the updated claim is handed back to the caller.
//
// Concurrency: the repository performs the transition as an atomic
// compare-and-set on the stored status, so of two racing requests exactly
// one succeeds and the other observes ErrAlreadyProcessed.
func (s *ClaimService) UpdateStatus(ctx context.Context, claimID, status string) (*domain.Claim, error) {
	target := domain.ClaimStatus(status)
	if !target.ValidTarget() {
		return nil, ErrInvalidStatus
	}

	c, err := s.Repo.UpdateClaimStatus(ctx, s.DB, claimID, target)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrClaimNotFound
		case errors.Is(err, repo.ErrStale):
			return nil, ErrAlreadyProcessed
		default:
			return nil, err
		}
	}
	return c, nil
}

// Stats returns the listing cache key pair: total claim count and the most
// recent update timestamp (nil when the store is empty). The pair changes on
// every insert and every status transition, so the HTTP layer derives weak
// ETags from it.
func (s *ClaimService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.ClaimsStats(ctx, s.DB)
}

// Summarize reads a snapshot of the claim set and computes the scoped
// per-type totals. The read does not block concurrent writers; a slightly
// stale summary is acceptable because the dashboard re-fetches after every
// mutation.
func (s *ClaimService) Summarize(ctx context.Context, scope aggregate.Scope) (aggregate.Summary, error) {
	claims, err := s.Repo.ListClaims(ctx, s.DB, "")
	if err != nil {
		return aggregate.Summary{}, err
	}
	return aggregate.Summarize(claims, scope), nil
}
