package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/archlens/archlens-backend/config"
	rulecfg "github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/auth"
	"github.com/archlens/archlens-backend/internal/bootstrap"
	"github.com/archlens/archlens-backend/internal/reports"
	"github.com/archlens/archlens-backend/internal/runs"
	"github.com/archlens/archlens-backend/internal/schedule"
	"github.com/archlens/archlens-backend/internal/storage/postgres"
	"github.com/archlens/archlens-backend/internal/users"
)

const serviceName = "archlens-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	// Every backing store is optional: the analysis endpoints stay up and
	// the dependent features degrade when one is missing.
	var pool *pgxpool.Pool
	if p, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)}); err != nil {
		log.Printf("[boot] postgres unavailable, report storage disabled: %v", err)
	} else {
		pool = p
		defer pool.Close()
	}

	var sqlDB *sql.DB
	if pool != nil {
		if db, err := postgres.NewConnection(&cfg.Database); err != nil {
			log.Printf("[boot] finding history unavailable: %v", err)
		} else {
			sqlDB = db
			defer sqlDB.Close()
		}
	}

	var rdb *redis.Client
	{
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(pctx).Err(); err != nil {
			log.Printf("[boot] redis unavailable, run tracking disabled: %v", err)
			_ = client.Close()
		} else {
			rdb = client
			defer rdb.Close()
		}
		cancel()
	}

	var authClient *fbauth.Client
	if cfg.Firebase.CredentialsPath != "" {
		if ac, err := auth.NewFirebaseAuth(ctx, &cfg.Firebase); err != nil {
			log.Printf("[boot] firebase auth disabled: %v", err)
		} else {
			authClient = ac
		}
	}

	timeout := time.Duration(cfg.Engine.AnalysisTimeoutSeconds) * time.Second
	thresholds := rulecfg.FromEnv()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:     serviceName,
		Version:         cfg.App.Version,
		DB:              pool,
		SQLDB:           sqlDB,
		Redis:           rdb,
		AuthClient:      authClient,
		Thresholds:      thresholds,
		AnalysisTimeout: timeout,
		RateLimitRPS:    float64(cfg.Server.RateLimitRPS),
		RateLimitBurst:  cfg.Server.RateLimitBurst,
	})

	if cfg.Engine.FactWatchDir != "" {
		deps := schedule.WatcherDeps{
			Dir:        cfg.Engine.FactWatchDir,
			CronSpec:   cfg.Engine.FactWatchCron,
			Thresholds: thresholds,
			Timeout:    timeout,
			ArchiveDir: cfg.Engine.FactArchiveDir,
		}
		if pool != nil {
			deps.Users = users.NewRepo(pool)
			deps.Reports = reports.NewRepo(pool)
		}
		if rdb != nil {
			deps.Runs = runs.NewRepo(rdb)
		}
		if sqlDB != nil {
			deps.History = postgres.NewHistoryStore(sqlDB)
		}

		w := schedule.NewWatcher(deps)
		if err := w.Start(); err != nil {
			log.Printf("[boot] fact watcher not started: %v", err)
		} else {
			defer w.Stop()
		}
	}

	log.Printf("[boot] %s %s listening on :%s", serviceName, cfg.App.Version, cfg.Server.Port)
	log.Fatal(r.Run(":" + cfg.Server.Port))
}
