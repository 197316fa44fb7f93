package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/claimsdesk/claims-backend/internal/domain"
)

// DBStore keeps document bytes in the document_blobs table of the same
// SQLite database that holds claim and document metadata. It is the default
// backend: zero extra infrastructure, and the blob row shares the database's
// durability guarantees.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore returns a BlobStore backed by the given GORM handle.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// Put stores data under key, replacing any existing blob (upsert on the
// primary key).
func (s *DBStore) Put(ctx context.Context, key string, _ string, data []byte) error {
	blob := domain.DocumentBlob{DocumentID: key, Data: data}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data"}),
		}).
		Create(&blob).Error
}

// Get returns the stored bytes for key, or ErrBlobNotFound.
func (s *DBStore) Get(ctx context.Context, key string) ([]byte, error) {
	var blob domain.DocumentBlob
	err := s.db.WithContext(ctx).
		Where("document_id = ?", key).
		First(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return blob.Data, nil
}
