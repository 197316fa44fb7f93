// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Document
// metadata. Document bytes live behind storage.BlobStore, not here.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/claimsdesk/claims-backend/internal/domain"
)

// CreateDocument inserts a metadata row for a document attached to a claim.
// Used by the seeding path; the HTTP surface exposes no upload today.
func CreateDocument(ctx context.Context, db *gorm.DB, d *domain.Document) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(d).Error
}

// ListDocumentsByClaim returns the metadata of all documents attached to a
// claim, oldest first. A claim with no documents yields an empty slice, not
// an error — the distinction between "no documents" and "no such claim" is
// made at the service layer.
func ListDocumentsByClaim(ctx context.Context, db *gorm.DB, claimID string) ([]domain.Document, error) {
	var out []domain.Document
	err := db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// GetDocument fetches a single document's metadata by ID. If the record
// does not exist, it returns ErrNotFound.
func GetDocument(ctx context.Context, db *gorm.DB, id string) (*domain.Document, error) {
	var d domain.Document
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}
