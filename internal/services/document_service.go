// Package services – DocumentService
//
// This file implements the DocumentService, the read side of the document
// registry: metadata listings per claim and byte retrieval for downloads.
// Bytes live behind a storage.BlobStore so the service is identical whether
// attachments sit in the SQLite blob table or in S3. Attach exists for the
// seeding path; the HTTP surface exposes no upload.
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/claimsdesk/claims-backend/internal/domain"
	"github.com/claimsdesk/claims-backend/internal/repo"
	"github.com/claimsdesk/claims-backend/internal/storage"
)

// DocumentService serves document metadata and bytes for a claim's
// supporting evidence.
type DocumentService struct {
	// DB is the GORM handle used for metadata persistence.
	DB *gorm.DB
	// Blobs stores and returns the raw document bytes.
	Blobs storage.BlobStore
}

// NewDocumentService constructs a DocumentService over db and blobs.
func NewDocumentService(db *gorm.DB, blobs storage.BlobStore) *DocumentService {
	return &DocumentService{DB: db, Blobs: blobs}
}

// ListByClaim returns the metadata of every document attached to claimID,
// oldest first. An existing claim with no attachments yields an empty slice;
// an unknown claim yields ErrClaimNotFound so the gateway can answer 404
// instead of an empty 200.
func (s *DocumentService) ListByClaim(ctx context.Context, claimID string) ([]domain.Document, error) {
	if _, err := repo.GetClaim(ctx, s.DB, claimID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return repo.ListDocumentsByClaim(ctx, s.DB, claimID)
}

// Get returns a document's metadata together with the exact bytes that were
// stored for it. Retrieval is independent of the owning claim's status.
// A missing metadata row or missing blob both surface as ErrDocumentNotFound
// — the caller never receives a partial result.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, []byte, error) {
	d, err := repo.GetDocument(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	data, err := s.Blobs.Get(ctx, d.ID)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	return d, data, nil
}

// Attach stores a document's bytes and metadata for claimID. The claim must
// exist. Used by seeding and any future upload path.
func (s *DocumentService) Attach(ctx context.Context, claimID, fileName, contentType string, data []byte) (*domain.Document, error) {
	if _, err := repo.GetClaim(ctx, s.DB, claimID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}

	d := &domain.Document{
		ID:          uuid.NewString(),
		ClaimID:     claimID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}
	if err := s.Blobs.Put(ctx, d.ID, contentType, data); err != nil {
		return nil, err
	}
	if err := repo.CreateDocument(ctx, s.DB, d); err != nil {
		return nil, err
	}
	return d, nil
}
