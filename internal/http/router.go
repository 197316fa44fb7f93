// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/claimsdesk/claims-backend/internal/config"
	"github.com/claimsdesk/claims-backend/internal/domain"
	"github.com/claimsdesk/claims-backend/internal/http/handlers"
	"github.com/claimsdesk/claims-backend/internal/http/middleware"
	"github.com/claimsdesk/claims-backend/internal/repo"
	"github.com/claimsdesk/claims-backend/internal/services"
	"github.com/claimsdesk/claims-backend/internal/storage"
)

// claimRepoShim adapts the repository free functions to the services.ClaimRepo
// interface expected by the ClaimService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type claimRepoShim struct{}

// CreateClaim proxies repo.CreateClaim.
func (claimRepoShim) CreateClaim(ctx context.Context, db *gorm.DB, c *domain.Claim) error {
	return repo.CreateClaim(ctx, db, c)
}

// ListClaims proxies repo.ListClaims.
func (claimRepoShim) ListClaims(ctx context.Context, db *gorm.DB, claimID string) ([]domain.Claim, error) {
	return repo.ListClaims(ctx, db, claimID)
}

// GetClaim proxies repo.GetClaim.
func (claimRepoShim) GetClaim(ctx context.Context, db *gorm.DB, claimID string) (*domain.Claim, error) {
	return repo.GetClaim(ctx, db, claimID)
}

// UpdateClaimStatus proxies repo.UpdateClaimStatus (the guarded transition).
func (claimRepoShim) UpdateClaimStatus(ctx context.Context, db *gorm.DB, claimID string, status domain.ClaimStatus) (*domain.Claim, error) {
	return repo.UpdateClaimStatus(ctx, db, claimID, status)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// compression, CORS and security headers, health and metrics endpoints, and
// then mounts the public API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip (documents excluded: stored bytes must arrive unaltered)
//  7. Metrics
//  8. Rate limiter (per IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, blobs storage.BlobStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Response compression. Document downloads are excluded so clients
	// always receive the stored bytes verbatim, and /metrics because the
	// Prometheus handler negotiates its own encoding.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		cfg.APIBasePath + "/documents",
		"/metrics",
	})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 9) CORS posture. gin-contrib/cors owns the ACAO header: "*" when no
	// origins are configured (the dashboard is a static page served from
	// anywhere), allowlist echo otherwise.
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Content-Disposition"},
		AllowCredentials: false, // must remain false with AllowAllOrigins
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false, // claim listings rely on conditional GETs
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/blob store
	claimSvc := services.NewClaimService(db, claimRepoShim{})
	docSvc := services.NewDocumentService(db, blobs)
	h := handlers.New(claimSvc, docSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Claims
		api.POST("/claims", h.CreateClaim)
		api.GET("/claims", h.ListClaims)
		api.GET("/claims/summary", h.GetSummary)
		api.PATCH("/claims/:id", h.UpdateClaimStatus)

		// Documents
		api.GET("/claims/:id/documents", h.ListClaimDocuments)
		api.GET("/documents/:id", h.DownloadDocument)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
