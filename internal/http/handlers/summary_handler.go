// Summary HTTP handler.
//
// Exposes the server-side aggregation endpoint:
//   - GET /claims/summary?status=pending|completed
//
// The heavy lifting lives in the aggregate package; this handler only parses
// the scope and shapes the HTTP response.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/claimsdesk/claims-backend/internal/aggregate"
)

// GetSummary godoc
// @ID          getClaimsSummary
// @Summary     Scoped claim amount summary
// @Description Returns truncated per-type amount totals for the requested scope. "pending" covers claims awaiting review; "completed" covers approved and rejected ones. Every known type key is present even when zero.
// @Tags        Claims
// @Produce     json
//
// @Param       status  query  string  true  "Summary scope"  Enums(pending, completed)
//
// @Success     200  {object} aggregate.Summary
// @Failure     400  {object} handlers.ErrorResponse "Unknown scope"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims/summary [get]
func (h *Handlers) GetSummary(c *gin.Context) {
	scope, valid := aggregate.ParseScope(c.Query("status"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be pending or completed")
		return
	}

	sum, err := h.claimSvc.Summarize(c.Request.Context(), scope)
	if err != nil {
		failInternal(c, err)
		return
	}
	ok(c, http.StatusOK, sum)
}
