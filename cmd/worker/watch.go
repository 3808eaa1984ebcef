package main

import (
	"time"

	"github.com/archlens/archlens-backend/config"
	rulecfg "github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/schedule"
)

// watch sweeps the drop directory once, then keeps it on the configured
// cron schedule. Persistence is disabled here; results only reach the log.
func watch(dir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	w := schedule.NewWatcher(schedule.WatcherDeps{
		Dir:        dir,
		CronSpec:   cfg.Engine.FactWatchCron,
		Thresholds: rulecfg.FromEnv(),
		Timeout:    time.Duration(cfg.Engine.AnalysisTimeoutSeconds) * time.Second,
		ArchiveDir: cfg.Engine.FactArchiveDir,
	})

	w.Sweep()
	if err := w.Start(); err != nil {
		return err
	}
	select {}
}
