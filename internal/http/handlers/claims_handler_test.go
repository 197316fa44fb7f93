package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/claimsdesk/claims-backend/internal/aggregate"
	"github.com/claimsdesk/claims-backend/internal/domain"
	"github.com/claimsdesk/claims-backend/internal/repo"
	"github.com/claimsdesk/claims-backend/internal/services"
)

// ---------- test DB + repo shim ----------

func newClaimsDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:claims_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&domain.Claim{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Minimal shim implementing services.ClaimRepo using repo package (like router.go)
type testClaimRepo struct{}

func (testClaimRepo) CreateClaim(ctx context.Context, db *gorm.DB, c *domain.Claim) error {
	return repo.CreateClaim(ctx, db, c)
}

func (testClaimRepo) ListClaims(ctx context.Context, db *gorm.DB, claimID string) ([]domain.Claim, error) {
	return repo.ListClaims(ctx, db, claimID)
}

func (testClaimRepo) GetClaim(ctx context.Context, db *gorm.DB, claimID string) (*domain.Claim, error) {
	return repo.GetClaim(ctx, db, claimID)
}

func (testClaimRepo) UpdateClaimStatus(ctx context.Context, db *gorm.DB, claimID string, status domain.ClaimStatus) (*domain.Claim, error) {
	return repo.UpdateClaimStatus(ctx, db, claimID, status)
}

// ---------- flexible service stubs ----------

type stubClaimSvc struct {
	create    func(context.Context, services.CreateClaimInput) (*domain.Claim, error)
	list      func(context.Context, string) ([]domain.Claim, error)
	update    func(context.Context, string, string) (*domain.Claim, error)
	summarize func(context.Context, aggregate.Scope) (aggregate.Summary, error)
	stats     func(context.Context) (int64, *time.Time, error)
}

func (s stubClaimSvc) Create(ctx context.Context, in services.CreateClaimInput) (*domain.Claim, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &domain.Claim{ClaimID: "c-1", Type: in.Type, Status: domain.StatusPending}, nil
}

func (s stubClaimSvc) List(ctx context.Context, claimID string) ([]domain.Claim, error) {
	if s.list != nil {
		return s.list(ctx, claimID)
	}
	return nil, nil
}

func (s stubClaimSvc) UpdateStatus(ctx context.Context, claimID, status string) (*domain.Claim, error) {
	if s.update != nil {
		return s.update(ctx, claimID, status)
	}
	return &domain.Claim{ClaimID: claimID, Status: domain.ClaimStatus(status)}, nil
}

func (s stubClaimSvc) Summarize(ctx context.Context, scope aggregate.Scope) (aggregate.Summary, error) {
	if s.summarize != nil {
		return s.summarize(ctx, scope)
	}
	return aggregate.Summarize(nil, scope), nil
}

func (s stubClaimSvc) Stats(ctx context.Context) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx)
	}
	// Stats failures just skip the conditional-response path.
	return 0, nil, errors.New("stats unavailable")
}

type stubDocSvc struct {
	listByClaim func(context.Context, string) ([]domain.Document, error)
	get         func(context.Context, string) (*domain.Document, []byte, error)
}

func (s stubDocSvc) ListByClaim(ctx context.Context, claimID string) ([]domain.Document, error) {
	if s.listByClaim != nil {
		return s.listByClaim(ctx, claimID)
	}
	return nil, nil
}

func (s stubDocSvc) Get(ctx context.Context, id string) (*domain.Document, []byte, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return nil, nil, services.ErrDocumentNotFound
}

// newTestRouter wires the handlers onto a bare Gin engine with the routes
// the real router registers.
func newTestRouter(claimSvc ClaimService, docSvc DocumentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(claimSvc, docSvc)
	r := gin.New()
	r.POST("/claims", h.CreateClaim)
	r.GET("/claims", h.ListClaims)
	r.GET("/claims/summary", h.GetSummary)
	r.PATCH("/claims/:id", h.UpdateClaimStatus)
	r.GET("/claims/:id/documents", h.ListClaimDocuments)
	r.GET("/documents/:id", h.DownloadDocument)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------- CreateClaim ----------

func TestCreateClaim_Created(t *testing.T) {
	var got services.CreateClaimInput
	r := newTestRouter(stubClaimSvc{
		create: func(_ context.Context, in services.CreateClaimInput) (*domain.Claim, error) {
			got = in
			return &domain.Claim{ClaimID: "CLM-1", Type: in.Type, Amount: in.Amount, Status: domain.StatusPending}, nil
		},
	}, stubDocSvc{})

	w := doJSON(t, r, http.MethodPost, "/claims", map[string]any{
		"type":          "Travel",
		"employee_id":   "E-1",
		"employee_name": "Priya Sharma",
		"amount":        1234.99,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /claims -> %d body=%s", w.Code, w.Body.String())
	}
	if got.Type != "Travel" || got.EmployeeID != "E-1" || got.Amount != 1234.99 {
		t.Fatalf("service received wrong input: %+v", got)
	}
	var claim domain.Claim
	if err := json.Unmarshal(w.Body.Bytes(), &claim); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if claim.ClaimID != "CLM-1" || claim.Status != domain.StatusPending {
		t.Fatalf("unexpected claim: %+v", claim)
	}
}

func TestCreateClaim_InvalidJSON(t *testing.T) {
	r := newTestRouter(stubClaimSvc{}, stubDocSvc{})
	req := httptest.NewRequest(http.MethodPost, "/claims", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != ErrCodeBadRequest || body["error"] == "" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestCreateClaim_ValidationErrors(t *testing.T) {
	for _, sentinel := range []error{services.ErrMissingFields, services.ErrInvalidAmount} {
		r := newTestRouter(stubClaimSvc{
			create: func(context.Context, services.CreateClaimInput) (*domain.Claim, error) {
				return nil, sentinel
			},
		}, stubDocSvc{})
		w := doJSON(t, r, http.MethodPost, "/claims", map[string]any{
			"type": "Travel", "employee_id": "E-1", "employee_name": "X",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d", sentinel, w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["error"] != sentinel.Error() {
			t.Fatalf("expected error %q, got %v", sentinel.Error(), body["error"])
		}
	}
}

func TestCreateClaim_InternalErrorIsOpaque(t *testing.T) {
	r := newTestRouter(stubClaimSvc{
		create: func(context.Context, services.CreateClaimInput) (*domain.Claim, error) {
			return nil, errors.New("disk melted: /var/lib/claims.db")
		},
	}, stubDocSvc{})
	w := doJSON(t, r, http.MethodPost, "/claims", map[string]any{
		"type": "Travel", "employee_id": "E-1", "employee_name": "X",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "internal server error" {
		t.Fatalf("internal detail leaked: %v", body["error"])
	}
}

// ---------- ListClaims ----------

func TestListClaims_ArrayAndFilterPassthrough(t *testing.T) {
	var gotFilter string
	r := newTestRouter(stubClaimSvc{
		list: func(_ context.Context, claimID string) ([]domain.Claim, error) {
			gotFilter = claimID
			return []domain.Claim{{ClaimID: "a"}, {ClaimID: "b"}}, nil
		},
	}, stubDocSvc{})

	w := doJSON(t, r, http.MethodGet, "/claims?claim_id=a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /claims -> %d", w.Code)
	}
	if gotFilter != "a" {
		t.Fatalf("filter not passed through, got %q", gotFilter)
	}
	var claims []domain.Claim
	if err := json.Unmarshal(w.Body.Bytes(), &claims); err != nil {
		t.Fatalf("expected JSON array: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
}

func TestListClaims_EmptyIsArrayNotNull(t *testing.T) {
	r := newTestRouter(stubClaimSvc{}, stubDocSvc{})
	w := doJSON(t, r, http.MethodGet, "/claims", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /claims -> %d", w.Code)
	}
	if got := bytes.TrimSpace(w.Body.Bytes()); string(got) != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestListClaims_ListError(t *testing.T) {
	r := newTestRouter(stubClaimSvc{
		list: func(context.Context, string) ([]domain.Claim, error) {
			return nil, errors.New("boom")
		},
	}, stubDocSvc{})
	w := doJSON(t, r, http.MethodGet, "/claims", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestListClaims_WeakETagAnd304(t *testing.T) {
	db := newClaimsDB(t)
	svc := services.NewClaimService(db, testClaimRepo{})
	if _, err := svc.Create(context.Background(), services.CreateClaimInput{
		Type: "Travel", EmployeeID: "E-1", EmployeeName: "Priya", Amount: 10,
	}); err != nil {
		t.Fatalf("seed claim: %v", err)
	}

	r := newTestRouter(svc, stubDocSvc{})

	// First GET: 200 with a weak ETag.
	w1 := doJSON(t, r, http.MethodGet, "/claims", nil)
	if w1.Code != http.StatusOK {
		t.Fatalf("GET /claims -> %d", w1.Code)
	}
	etag := w1.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	// Conditional GET with the same tag: 304, empty body.
	req := httptest.NewRequest(http.MethodGet, "/claims", nil)
	req.Header.Set("If-None-Match", etag)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w2.Code)
	}
	if w2.Body.Len() != 0 {
		t.Fatalf("304 must have empty body, got %q", w2.Body.String())
	}

	// A status transition must invalidate the tag.
	claims, err := svc.List(context.Background(), "")
	if err != nil || len(claims) != 1 {
		t.Fatalf("list: %v (%d claims)", err, len(claims))
	}
	if _, err := svc.UpdateStatus(context.Background(), claims[0].ClaimID, "approved"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	req3 := httptest.NewRequest(http.MethodGet, "/claims", nil)
	req3.Header.Set("If-None-Match", etag)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req3)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 after transition, got %d", w3.Code)
	}
	if w3.Header().Get("ETag") == etag {
		t.Fatalf("ETag did not change after status transition")
	}
}

// The ETag derivation goes through the ClaimService interface, so any
// implementation — not just the GORM-backed one — gets conditional responses.
func TestListClaims_ETagFromServiceInterface(t *testing.T) {
	ts := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRouter(stubClaimSvc{
		stats: func(context.Context) (int64, *time.Time, error) {
			return 3, &ts, nil
		},
	}, stubDocSvc{})

	w := doJSON(t, r, http.MethodGet, "/claims", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /claims -> %d", w.Code)
	}
	want := fmt.Sprintf(`W/"claims:%d:%d"`, 3, ts.Unix())
	if got := w.Header().Get("ETag"); got != want {
		t.Fatalf("ETag = %q, want %q", got, want)
	}

	req := httptest.NewRequest(http.MethodGet, "/claims", nil)
	req.Header.Set("If-None-Match", want)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusNotModified {
		t.Fatalf("expected 304 from interface-backed stats, got %d", w2.Code)
	}
}

func TestListClaims_FilteredRequestSkipsETag(t *testing.T) {
	db := newClaimsDB(t)
	svc := services.NewClaimService(db, testClaimRepo{})
	r := newTestRouter(svc, stubDocSvc{})

	w := doJSON(t, r, http.MethodGet, "/claims?claim_id=nope", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET filtered -> %d", w.Code)
	}
	if w.Header().Get("ETag") != "" {
		t.Fatalf("filtered listing must not carry an ETag")
	}
}

// ---------- UpdateClaimStatus ----------

func TestUpdateClaimStatus_OK(t *testing.T) {
	r := newTestRouter(stubClaimSvc{
		update: func(_ context.Context, id, status string) (*domain.Claim, error) {
			return &domain.Claim{ClaimID: id, Status: domain.ClaimStatus(status)}, nil
		},
	}, stubDocSvc{})

	w := doJSON(t, r, http.MethodPatch, "/claims/CLM-9", map[string]any{"status": "approved"})
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH -> %d body=%s", w.Code, w.Body.String())
	}
	var claim domain.Claim
	if err := json.Unmarshal(w.Body.Bytes(), &claim); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if claim.ClaimID != "CLM-9" || claim.Status != domain.StatusApproved {
		t.Fatalf("unexpected claim: %+v", claim)
	}
}

func TestUpdateClaimStatus_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid target", services.ErrInvalidStatus, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown claim", services.ErrClaimNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"already processed", services.ErrAlreadyProcessed, http.StatusConflict, ErrCodeConflict},
		{"storage failure", errors.New("io error"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(stubClaimSvc{
				update: func(context.Context, string, string) (*domain.Claim, error) {
					return nil, tc.err
				},
			}, stubDocSvc{})
			w := doJSON(t, r, http.MethodPatch, "/claims/CLM-9", map[string]any{"status": "approved"})
			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}
			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["code"] != tc.wantCode {
				t.Fatalf("expected code %q, got %v", tc.wantCode, body["code"])
			}
			if body["error"] == "" {
				t.Fatalf("error field must be populated")
			}
		})
	}
}

func TestUpdateClaimStatus_InvalidJSON(t *testing.T) {
	r := newTestRouter(stubClaimSvc{}, stubDocSvc{})
	req := httptest.NewRequest(http.MethodPatch, "/claims/CLM-9", bytes.NewBufferString("nope"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
