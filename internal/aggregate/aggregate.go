// Package aggregate computes claim-amount summaries over a snapshot of
// claims. It is a pure package: no database, no transport, no clock — the
// result depends only on the input slice, so two calls over the same
// snapshot are byte-identical.
package aggregate

import (
	"math"

	"github.com/claimsdesk/claims-backend/internal/domain"
)

// Scope selects which claims participate in a summary.
type Scope string

// Summary scopes. Pending covers claims awaiting review; Completed covers
// claims in either terminal state.
const (
	ScopePending   Scope = "pending"
	ScopeCompleted Scope = "completed"
)

// Matches reports whether a claim status falls inside the scope.
func (s Scope) Matches(status domain.ClaimStatus) bool {
	switch s {
	case ScopePending:
		return status == domain.StatusPending
	case ScopeCompleted:
		return status.IsTerminal()
	default:
		return false
	}
}

// Summary totals claim amounts for one scope. ByType always carries all six
// fixed type labels, each mapping to the sum of truncated amounts of the
// scoped claims bucketed under that label.
type Summary struct {
	Scope  Scope            `json:"status"`
	Total  int64            `json:"total"`
	ByType map[string]int64 `json:"by_type"`
}

// Summarize filters claims by scope and sums whole-unit amounts per type
// bucket. Each amount is floored individually before summation; flooring the
// grand total instead would disagree with the per-row truncated amounts the
// dashboard displays (floor(a)+floor(b) != floor(a+b) in general).
//
// Unknown types fold into the "Other" bucket via domain.BucketType. Total is
// always the sum of the ByType values.
func Summarize(claims []domain.Claim, scope Scope) Summary {
	byType := make(map[string]int64, len(domain.ClaimTypes))
	for _, label := range domain.ClaimTypes {
		byType[label] = 0
	}

	var total int64
	for _, c := range claims {
		if !scope.Matches(c.Status) {
			continue
		}
		units := truncate(c.Amount)
		byType[domain.BucketType(c.Type)] += units
		total += units
	}

	return Summary{Scope: scope, Total: total, ByType: byType}
}

// truncate floors a monetary amount to whole currency units. Amounts are
// non-negative by contract; negative inputs still floor toward zero revenue
// rather than panicking.
func truncate(amount float64) int64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return int64(math.Floor(amount))
}

// ParseScope maps the query-string form to a Scope, reporting whether the
// value is one of the two supported scopes.
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case ScopePending:
		return ScopePending, true
	case ScopeCompleted:
		return ScopeCompleted, true
	default:
		return "", false
	}
}
