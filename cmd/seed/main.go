// Command seed loads a small set of demo claims and attached documents into
// the configured database so the API has data to serve out of the box. It is
// safe to re-run: seeding is skipped when any claims already exist.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/claimsdesk/claims-backend/internal/config"
	"github.com/claimsdesk/claims-backend/internal/domain"
	"github.com/claimsdesk/claims-backend/internal/repo"
	"github.com/claimsdesk/claims-backend/internal/services"
	"github.com/claimsdesk/claims-backend/internal/storage"
	"github.com/claimsdesk/claims-backend/internal/sysutil"
)

type claimRepoShim struct{}

func (claimRepoShim) CreateClaim(ctx context.Context, db *gorm.DB, c *domain.Claim) error {
	return repo.CreateClaim(ctx, db, c)
}

func (claimRepoShim) ListClaims(ctx context.Context, db *gorm.DB, claimID string) ([]domain.Claim, error) {
	return repo.ListClaims(ctx, db, claimID)
}

func (claimRepoShim) GetClaim(ctx context.Context, db *gorm.DB, claimID string) (*domain.Claim, error) {
	return repo.GetClaim(ctx, db, claimID)
}

func (claimRepoShim) UpdateClaimStatus(ctx context.Context, db *gorm.DB, claimID string, status domain.ClaimStatus) (*domain.Claim, error) {
	return repo.UpdateClaimStatus(ctx, db, claimID, status)
}

// seedClaim pairs a claim with the documents to attach to it and an optional
// terminal status to move it to after creation.
type seedClaim struct {
	input   services.CreateClaimInput
	docs    []seedDoc
	decided domain.ClaimStatus
}

type seedDoc struct {
	fileName    string
	contentType string
	data        []byte
}

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)

	ctx := context.Background()

	// SEED_DB_PATH lets exercises target a scratch database without touching
	// the server's DB_PATH.
	dbPath := sysutil.FirstNonEmpty(os.Getenv("SEED_DB_PATH"), cfg.DBPath)
	db, err := repo.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", dbPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	blobs, err := newBlobStore(ctx, db, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("blob store setup failed")
	}

	existing, err := repo.ListClaims(ctx, db, "")
	if err != nil {
		log.Fatal().Err(err).Msg("list claims failed")
	}
	if len(existing) > 0 {
		log.Info().Int("claims", len(existing)).Msg("database already seeded, nothing to do")
		return
	}

	claimSvc := services.NewClaimService(db, claimRepoShim{})
	docSvc := services.NewDocumentService(db, blobs)

	var claims, docs int
	for _, sc := range demoClaims() {
		c, err := claimSvc.Create(ctx, sc.input)
		if err != nil {
			log.Fatal().Err(err).Str("claim_id", sc.input.ClaimID).Msg("create claim failed")
		}
		claims++

		for _, d := range sc.docs {
			if _, err := docSvc.Attach(ctx, c.ClaimID, d.fileName, d.contentType, d.data); err != nil {
				log.Fatal().Err(err).Str("claim_id", c.ClaimID).Str("file", d.fileName).Msg("attach document failed")
			}
			docs++
		}

		if sc.decided.ValidTarget() {
			if _, err := claimSvc.UpdateStatus(ctx, c.ClaimID, string(sc.decided)); err != nil {
				log.Fatal().Err(err).Str("claim_id", c.ClaimID).Msg("status update failed")
			}
		}
	}

	log.Info().Int("claims", claims).Int("documents", docs).Msg("seed complete")
}

func newBlobStore(ctx context.Context, db *gorm.DB, cfg config.StorageConfig) (storage.BlobStore, error) {
	if cfg.Driver == config.StorageDriverS3 {
		return storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
	}
	return storage.NewDBStore(db), nil
}

func demoClaims() []seedClaim {
	day := func(d int) time.Time {
		return time.Date(2026, time.July, d, 9, 0, 0, 0, time.UTC)
	}
	pdf := []byte("%PDF-1.4 demo receipt\n%%EOF\n")
	png := []byte("\x89PNG\r\n\x1a\n demo scan")

	return []seedClaim{
		{
			input: services.CreateClaimInput{
				ClaimID:       "CLM-1001",
				Type:          domain.TypeTravel,
				EmployeeID:    "E-204",
				EmployeeName:  "Priya Raman",
				EmployeeEmail: "priya.raman@example.com",
				Department:    "Field Sales",
				ClaimDate:     day(3),
				Amount:        412.80,
				Description:   "Client visit: train fare and one hotel night",
			},
			docs: []seedDoc{
				{fileName: "train-tickets.pdf", contentType: "application/pdf", data: pdf},
				{fileName: "hotel-invoice.pdf", contentType: "application/pdf", data: pdf},
			},
			decided: domain.StatusApproved,
		},
		{
			input: services.CreateClaimInput{
				ClaimID:       "CLM-1002",
				Type:          domain.TypeMedical,
				EmployeeID:    "E-117",
				EmployeeName:  "Jonas Weber",
				EmployeeEmail: "jonas.weber@example.com",
				Department:    "Engineering",
				ClaimDate:     day(9),
				Amount:        89.50,
				Description:   "Annual eye exam copay",
			},
			docs: []seedDoc{
				{fileName: "copay-receipt.png", contentType: "image/png", data: png},
			},
		},
		{
			input: services.CreateClaimInput{
				ClaimID:       "CLM-1003",
				Type:          domain.TypeEquipment,
				EmployeeID:    "E-117",
				EmployeeName:  "Jonas Weber",
				EmployeeEmail: "jonas.weber@example.com",
				Department:    "Engineering",
				ClaimDate:     day(14),
				Amount:        1249.00,
				Description:   "Standing desk for home office",
			},
			docs: []seedDoc{
				{fileName: "desk-invoice.pdf", contentType: "application/pdf", data: pdf},
			},
			decided: domain.StatusRejected,
		},
		{
			input: services.CreateClaimInput{
				ClaimID:      "CLM-1004",
				Type:         domain.TypeMeal,
				EmployeeID:   "E-342",
				EmployeeName: "Aisha Bello",
				Department:   "Support",
				ClaimDate:    day(18),
				Amount:       36.20,
				Description:  "Team onboarding lunch",
			},
			docs: []seedDoc{
				{fileName: "lunch-receipt.png", contentType: "image/png", data: png},
			},
		},
		{
			input: services.CreateClaimInput{
				ClaimID:      "CLM-1005",
				Type:         "Conference",
				EmployeeID:   "E-058",
				EmployeeName: "Marta Kowalski",
				Department:   "Engineering",
				ClaimDate:    day(22),
				Amount:       540.00,
				Description:  "GopherCon EU ticket",
			},
		},
	}
}
