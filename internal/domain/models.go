// Package domain defines the persistence models for reimbursement claims and
// their supporting documents. These types are mapped with GORM and form the
// core data layer of the claims backend.
package domain

import (
	"strings"
	"time"
)

// ClaimStatus is the disposition of a claim within the review workflow.
// A claim starts pending and moves exactly once to approved or rejected;
// both are terminal.
type ClaimStatus string

// Workflow states.
const (
	StatusPending  ClaimStatus = "pending"
	StatusApproved ClaimStatus = "approved"
	StatusRejected ClaimStatus = "rejected"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s ClaimStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ValidTarget reports whether s is a status a caller may transition a claim
// to. Only the two terminal states are reachable by request; "pending" is
// assigned at creation and can never be a target.
func (s ClaimStatus) ValidTarget() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether the workflow permits moving from -> to.
// The full edge set is pending->approved and pending->rejected.
func CanTransition(from, to ClaimStatus) bool {
	return from == StatusPending && to.ValidTarget()
}

// ClaimTypes is the fixed enumeration of claim categories, in the order the
// dashboard renders them. TypeOther doubles as the catch-all bucket for
// aggregation: a claim whose stored type is outside this set keeps its
// verbatim value but is counted under "Other".
var ClaimTypes = []string{
	TypeMedical, TypeTravel, TypeEducation, TypeMeal, TypeEquipment, TypeOther,
}

// Claim type labels.
const (
	TypeMedical   = "Medical"
	TypeTravel    = "Travel"
	TypeEducation = "Education"
	TypeMeal      = "Meal"
	TypeEquipment = "Equipment"
	TypeOther     = "Other"
)

// BucketType maps an arbitrary stored claim type onto one of the six fixed
// labels for aggregation. Matching is exact after whitespace trimming, the
// same membership test the dashboard applies to its type list; "travel" is
// as unrecognized as "Snacks" and folds into TypeOther. The stored value
// itself is never rewritten.
func BucketType(t string) string {
	trimmed := strings.TrimSpace(t)
	switch trimmed {
	case TypeMedical, TypeTravel, TypeEducation, TypeMeal, TypeEquipment:
		return trimmed
	default:
		return TypeOther
	}
}

// Claim represents a single reimbursement request submitted by an employee.
// All fields except Status are set at creation and immutable thereafter; the
// employee attributes are denormalized snapshots and are not reconciled
// against a directory.
//
// Fields:
//   - ClaimID: unique identifier, assigned at creation (caller-supplied or
//     generated), primary key.
//   - Type: claim category; preserved verbatim even when outside ClaimTypes.
//   - EmployeeID / EmployeeName / EmployeeEmail / Department: submitter
//     attributes frozen at submission time.
//   - ClaimDate: submission timestamp.
//   - Amount: non-negative monetary value, stored at full precision.
//     Truncation to whole units is an aggregation/presentation concern only.
//   - Status: workflow state, mutated only by the claim service.
type Claim struct {
	ClaimID       string      `json:"claim_id"       gorm:"column:claim_id;type:varchar(64);primaryKey"`
	Type          string      `json:"type"           gorm:"type:varchar(64);not null;index"`
	EmployeeID    string      `json:"employee_id"    gorm:"type:varchar(64);not null;index"`
	EmployeeName  string      `json:"employee_name"  gorm:"type:varchar(255);not null"`
	EmployeeEmail string      `json:"employee_email" gorm:"type:varchar(255);not null"`
	Department    string      `json:"department"     gorm:"type:varchar(128);not null"`
	ClaimDate     time.Time   `json:"claim_date"     gorm:"not null"`
	Amount        float64     `json:"amount"         gorm:"not null"`
	Description   string      `json:"description"    gorm:"type:text"`
	Status        ClaimStatus `json:"status"         gorm:"type:varchar(16);not null;default:'pending';index;check:status IN ('pending','approved','rejected')"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Documents are the supporting files attached to this claim. Declaring
	// the has-many here puts the foreign key on the documents table, so
	// documents are cascade-deleted if their claim is ever removed.
	Documents []Document `json:"-" gorm:"foreignKey:ClaimID;references:ClaimID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Claim.
func (Claim) TableName() string { return "claims" }

// Document is a file attached to a claim as supporting evidence. Metadata
// lives here; the bytes are addressed by ID through a storage.BlobStore so
// the registry contract is identical across backends. Retrieval is
// independent of the owning claim's status.
type Document struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	ClaimID     string    `json:"claim_id"     gorm:"type:varchar(64);not null;index"`
	FileName    string    `json:"file_name"    gorm:"type:varchar(255);not null"`
	ContentType string    `json:"content_type" gorm:"type:varchar(128);not null;default:'application/octet-stream'"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }

// DocumentBlob holds document bytes for the default SQLite-backed blob
// store. When the S3 backend is configured this table stays empty.
type DocumentBlob struct {
	DocumentID string `gorm:"type:char(36);primaryKey"`
	Data       []byte `gorm:"type:blob;not null"`
}

// TableName returns the database table name for DocumentBlob.
func (DocumentBlob) TableName() string { return "document_blobs" }
