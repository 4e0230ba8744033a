package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tasktracker/internal/cache"
	"tasktracker/internal/config"
	"tasktracker/internal/db"
	"tasktracker/internal/logger"
	"tasktracker/internal/service"
)

func main() {
	reset := flag.Bool("reset", false, "drop the tasks and users tables before migrating")
	flag.Parse()

	cfg := config.Load()

	baseLog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = baseLog.Sync() }()
	log := logger.System(baseLog).With(zap.String("cmd", "migrate"))

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer func() { _ = db.Close(gormDB) }()
	log.Info("connected to database")

	if *reset || cfg.ResetDB {
		log.Warn("dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Fatal("reset database", zap.Error(err))
		}

		// cached lookups still carry the dropped ids
		cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		flushed, err := service.FlushUserCache(context.Background(), cacheClient)
		_ = cacheClient.Close()
		if err != nil {
			log.Fatal("flush user cache", zap.Error(err))
		}
		log.Info("user cache flushed", zap.Int("keys", flushed))
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("migrate database", zap.Error(err))
	}
	log.Info("database migrations completed")
}
