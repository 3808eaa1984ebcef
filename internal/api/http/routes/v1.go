package routes

import (
	"database/sql"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	analysishttp "github.com/archlens/archlens-backend/internal/analysis/http"
	"github.com/archlens/archlens-backend/internal/api/http/middleware"
	"github.com/archlens/archlens-backend/internal/auth"
	authmw "github.com/archlens/archlens-backend/internal/auth/middleware"
	"github.com/archlens/archlens-backend/internal/reports"
	"github.com/archlens/archlens-backend/internal/runs"
	"github.com/archlens/archlens-backend/internal/storage/postgres"
	"github.com/archlens/archlens-backend/internal/users"
)

// V1Deps carries the shared dependencies the v1 API is wired from. Any of
// the stores may be nil; the affected endpoints degrade instead of the
// whole API refusing to start.
type V1Deps struct {
	DB         *pgxpool.Pool
	SQLDB      *sql.DB
	Redis      *redis.Client
	AuthClient *fbauth.Client

	Thresholds      config.Thresholds
	AnalysisTimeout time.Duration

	// Rate limiting applies to the analysis routes only; zero disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	if dep.AuthClient != nil {
		api.Use(authmw.VerifyIDToken(dep.AuthClient))
	}
	if dep.DB != nil {
		userRepo := users.NewRepo(dep.DB)
		api.Use(auth.WithUser(userRepo))
		users.NewHandler(userRepo).Register(api)
	}

	var runRepo *runs.Repo
	if dep.Redis != nil {
		runRepo = runs.NewRepo(dep.Redis)
	}
	var reportRepo *reports.Repo
	if dep.DB != nil {
		reportRepo = reports.NewRepo(dep.DB)
	}
	var history *postgres.HistoryStore
	if dep.SQLDB != nil {
		history = postgres.NewHistoryStore(dep.SQLDB)
	}

	analysisGroup := api.Group("")
	if dep.RateLimitRPS > 0 {
		burst := dep.RateLimitBurst
		if burst <= 0 {
			burst = int(dep.RateLimitRPS) * 2
		}
		analysisGroup.Use(middleware.RateLimit(rate.Limit(dep.RateLimitRPS), burst))
	}

	h := analysishttp.NewHandler(dep.Thresholds, dep.AnalysisTimeout, runRepo, reportRepo, history)
	h.Register(analysisGroup)
}
