// Claim HTTP handlers.
//
// This file exposes REST endpoints for claim resources:
//   - POST   /claims               (create)
//   - GET    /claims               (list, optional claim_id filter, ETag support)
//   - PATCH  /claims/{id}          (status transition)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/claimsdesk/claims-backend/internal/aggregate"
	"github.com/claimsdesk/claims-backend/internal/domain"
	"github.com/claimsdesk/claims-backend/internal/http/middleware"
	"github.com/claimsdesk/claims-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// ClaimService defines claim lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ClaimService interface {
	// Create registers a new claim in pending status.
	Create(ctx context.Context, in services.CreateClaimInput) (*domain.Claim, error)
	// List returns claims in insertion order, optionally narrowed to one id.
	List(ctx context.Context, claimID string) ([]domain.Claim, error)
	// UpdateStatus moves a pending claim to approved or rejected.
	UpdateStatus(ctx context.Context, claimID, status string) (*domain.Claim, error)
	// Summarize computes scoped per-type amount totals.
	Summarize(ctx context.Context, scope aggregate.Scope) (aggregate.Summary, error)
	// Stats returns the claim count and latest update time for ETag derivation.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// DocumentService defines document retrieval operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type DocumentService interface {
	// ListByClaim returns document metadata attached to a claim.
	ListByClaim(ctx context.Context, claimID string) ([]domain.Document, error)
	// Get returns a document's metadata and raw bytes.
	Get(ctx context.Context, id string) (*domain.Document, []byte, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for claims, summaries, and documents.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	claimSvc ClaimService
	docSvc   DocumentService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(claimSvc ClaimService, docSvc DocumentService) *Handlers {
	return &Handlers{claimSvc: claimSvc, docSvc: docSvc}
}

//
// DTOs
//

// CreateClaimRequest is the JSON payload for registering a claim.
type CreateClaimRequest struct {
	// ClaimID optionally fixes the claim identifier; a UUID is generated when empty.
	ClaimID string `json:"claim_id" example:"CLM-2024-0042"`
	// Type is the expense category as entered; unknown values aggregate under Other.
	Type string `json:"type" binding:"required" example:"Travel"`
	// EmployeeID identifies the claimant.
	EmployeeID string `json:"employee_id" binding:"required" example:"E-1001"`
	// EmployeeName is the claimant's display name.
	EmployeeName  string `json:"employee_name" binding:"required" example:"Priya Sharma"`
	EmployeeEmail string `json:"employee_email" example:"priya.sharma@example.com"`
	Department    string `json:"department" example:"Engineering"`
	// ClaimDate is RFC 3339; defaults to the current time when omitted.
	ClaimDate time.Time `json:"claim_date"`
	// Amount is the claimed sum; must be non-negative.
	Amount      float64 `json:"amount" example:"1234.99"`
	Description string  `json:"description" example:"Client visit, return flight"`
}

// UpdateClaimStatusRequest is the JSON payload for a status transition.
type UpdateClaimStatusRequest struct {
	// Status is the target state: "approved" or "rejected".
	Status string `json:"status" binding:"required" example:"approved"`
}

//
// Handlers
//

// CreateClaim godoc
// @ID          createClaim
// @Summary     Register a new claim
// @Description Creates a reimbursement claim in pending status and returns the stored resource.
// @Tags        Claims
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateClaimRequest  true  "Create claim payload"
//
// @Success     201  {object}  domain.Claim
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /claims [post]
func (h *Handlers) CreateClaim(c *gin.Context) {
	var req CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	claim, err := h.claimSvc.Create(c.Request.Context(), services.CreateClaimInput{
		ClaimID:       req.ClaimID,
		Type:          req.Type,
		EmployeeID:    req.EmployeeID,
		EmployeeName:  req.EmployeeName,
		EmployeeEmail: req.EmployeeEmail,
		Department:    req.Department,
		ClaimDate:     req.ClaimDate,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrInvalidAmount):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			failInternal(c, err)
		}
		return
	}
	ok(c, http.StatusCreated, claim)
}

// ListClaims godoc
// @ID          listClaims
// @Summary     List claims
// @Description Returns all claims in insertion order. An optional claim_id query narrows the result to zero or one element. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Claims
// @Produce     json
//
// @Param       claim_id       query   string  false "Exact claim id filter"       example(CLM-2024-0042)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {array}  domain.Claim
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims [get]
func (h *Handlers) ListClaims(c *gin.Context) {
	ctx := c.Request.Context()
	filter := strings.TrimSpace(c.Query("claim_id"))

	// ETag pre-check (best effort). Only unfiltered listings are cacheable;
	// the stats pair (count, max updated_at) changes on every insert and
	// every status transition.
	if filter == "" {
		if count, maxTS, err := h.claimSvc.Stats(ctx); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"claims:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	claims, err := h.claimSvc.List(ctx, filter)
	if err != nil {
		failInternal(c, err)
		return
	}
	if claims == nil {
		claims = []domain.Claim{}
	}
	ok(c, http.StatusOK, claims)
}

// UpdateClaimStatus godoc
// @ID          updateClaimStatus
// @Summary     Approve or reject a claim
// @Description Moves a pending claim to approved or rejected. Terminal states are final: a second transition on the same claim returns 409, it is never a silent success.
// @Tags        Claims
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Claim ID"  example(CLM-2024-0042)
// @Param       body  body  handlers.UpdateClaimStatusRequest  true  "Target status"
//
// @Success     200  {object} domain.Claim
// @Failure     400  {object} handlers.ErrorResponse "Invalid target status"
// @Failure     404  {object} handlers.ErrorResponse "Claim not found"
// @Failure     409  {object} handlers.ErrorResponse "Claim already processed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims/{id} [patch]
func (h *Handlers) UpdateClaimStatus(c *gin.Context) {
	claimID := c.Param("id")

	var req UpdateClaimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ObserveTransition("invalid", "invalid")
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	claim, err := h.claimSvc.UpdateStatus(c.Request.Context(), claimID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			// Keep the status label bounded; the raw value is client input.
			middleware.ObserveTransition("invalid", "invalid")
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrClaimNotFound):
			middleware.ObserveTransition(req.Status, "not_found")
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrAlreadyProcessed):
			middleware.ObserveTransition(req.Status, "conflict")
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			middleware.ObserveTransition(req.Status, "error")
			failInternal(c, err)
		}
		return
	}

	middleware.ObserveTransition(req.Status, "ok")
	ok(c, http.StatusOK, claim)
}
