package bootstrap

import (
	"database/sql"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	httpapi "github.com/archlens/archlens-backend/internal/api/http"
	"github.com/archlens/archlens-backend/internal/api/http/middleware"
	"github.com/archlens/archlens-backend/internal/api/http/routes"
)

type RouterDeps struct {
	ServiceName string
	Version     string

	DB         *pgxpool.Pool
	SQLDB      *sql.DB
	Redis      *redis.Client
	AuthClient *fbauth.Client

	Thresholds      config.Thresholds
	AnalysisTimeout time.Duration

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	routes.RegisterV1(r, routes.V1Deps{
		DB:              dep.DB,
		SQLDB:           dep.SQLDB,
		Redis:           dep.Redis,
		AuthClient:      dep.AuthClient,
		Thresholds:      dep.Thresholds,
		AnalysisTimeout: dep.AnalysisTimeout,
		RateLimitRPS:    dep.RateLimitRPS,
		RateLimitBurst:  dep.RateLimitBurst,
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders,
		"Authorization", "X-Request-Id", "X-User-Id", "X-User-Email", "X-User-Name", "X-User-Photo")
	return cfg
}
