package server

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "github.com/keshav-protos/medai-clinical-view/internal/auth"
	"github.com/keshav-protos/medai-clinical-view/internal/documents"
	"github.com/keshav-protos/medai-clinical-view/internal/health"
	"github.com/keshav-protos/medai-clinical-view/internal/medai"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/config"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/metrics"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/server/middleware"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/storage/db"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/storage/object"
	localstore "github.com/keshav-protos/medai-clinical-view/internal/shared/storage/object/local"
	s3store "github.com/keshav-protos/medai-clinical-view/internal/shared/storage/object/s3"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/telemetry"
	"github.com/keshav-protos/medai-clinical-view/internal/uploads"
)

const serviceName = "medai-clinical-view"

// NewRouter constructs the Gin engine with middleware, dependencies and
// routes wired, plus the analyzer health monitor for the caller to run.
func NewRouter(cfg config.Config) (*gin.Engine, *health.Monitor, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	m := metrics.New(serviceName)

	// Registered ahead of the middleware chain: scrapers carry no identity
	// and must not consume a rate-limit bucket.
	r.GET("/metrics", m.Handler())

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		m.Middleware(serviceName),
		middleware.Auth(),
		middleware.RateLimit(rateLimitConfig()),
	)

	// Dependencies
	store, local, err := buildObjectStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			telemetry.Warn("database connect failed, falling back to memory", map[string]any{"error": err.Error()})
		} else if err := db.RunMigrations(context.Background(), conn); err != nil {
			telemetry.Warn("migrations failed, falling back to memory", map[string]any{"error": err.Error()})
			_ = conn.Close()
		} else {
			sqlDB = conn
		}
	}

	var docRepo documents.Repo
	if sqlDB != nil {
		docRepo = &documents.PGRepo{DB: sqlDB}
	} else {
		if cfg.Env == "production" {
			telemetry.Error("running production without a database", nil)
		}
		docRepo = documents.NewMemoryRepo()
	}
	docSvc := &documents.Service{Repo: docRepo}
	docHandler := documents.NewHandler(docSvc)

	analyzer, err := medai.NewClient(cfg.AnalyzerBaseURL)
	if err != nil {
		return nil, nil, err
	}
	monitor := health.NewMonitor(analyzer, cfg.AnalyzerPollInterval, m, serviceName)
	healthHandler := &health.Handler{Monitor: monitor}

	uploadHandler := &uploads.Handler{
		Tracker:      uploads.NewTracker(),
		Store:        store,
		Analyzer:     analyzer,
		Docs:         docSvc,
		Metrics:      m,
		SignedURLTTL: cfg.SignedURLTTL,
		Service:      serviceName,
	}

	googleAuthSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL)

	api := r.Group("/api/v1")
	healthHandler.RegisterRoutes(api)
	googleAuthSvc.RegisterRoutes(api)
	docHandler.RegisterRoutes(api)
	uploadHandler.RegisterRoutes(api)
	if local != nil {
		local.RegisterRoutes(api)
	}

	return r, monitor, nil
}

// buildObjectStore picks the configured backend. The local store is also
// returned concretely so its signed-URL serving route can be registered.
func buildObjectStore(cfg config.Config) (object.ObjectStore, *localstore.Store, error) {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
	local := localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL, signingSecret())
	return local, local, nil
}

// signingSecret reuses the JWT secret for local signed URLs so dev setups
// need a single secret.
func signingSecret() string {
	if secret := strings.TrimSpace(os.Getenv("JWT_SECRET")); secret != "" {
		return secret
	}
	return "dev-secret"
}

func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"UPLOAD":  {Rate: 0.2, Burst: 3},
			"POLLING": {Rate: 5, Burst: 20},
			"DEFAULT": {Rate: 2, Burst: 10},
		},
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			path := c.Request.URL.Path
			switch {
			case c.Request.Method == http.MethodPost && path == "/api/v1/documents":
				return "UPLOAD"
			case path == "/api/v1/uploads/status" || path == "/api/v1/status/analyzer":
				return "POLLING"
			case strings.HasPrefix(path, "/api/v1/files/"):
				return "POLLING"
			default:
				return "DEFAULT"
			}
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
