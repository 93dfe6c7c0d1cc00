package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dollaghosh1/wbpower-project/internal/config"
	"github.com/dollaghosh1/wbpower-project/internal/db"
	"github.com/dollaghosh1/wbpower-project/internal/gelf"
	"github.com/dollaghosh1/wbpower-project/internal/handler"
	"github.com/dollaghosh1/wbpower-project/internal/repository"
	"github.com/dollaghosh1/wbpower-project/internal/router"
	"github.com/dollaghosh1/wbpower-project/internal/service"
	"github.com/dollaghosh1/wbpower-project/internal/storage"
)

func main() {
	cfg := config.Load()

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		gelfWriter, err := gelf.New(cfg.GelfAddr, "wbpower-cms")
		if err != nil {
			log.Printf("Warning: GELF init failed: %v", err)
		} else {
			defer gelfWriter.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			log.Printf("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	conn, err := db.OpenSQLite(ctx, cfg.DBPath)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()
	log.Printf("Database ready at %s", cfg.DBPath)

	var files storage.Store
	switch cfg.Storage {
	case "oxidb":
		pool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize)
		if err != nil {
			log.Fatalf("Failed to connect to OxiDB: %v", err)
		}
		defer pool.Close()
		log.Printf("Connected to OxiDB at %s:%d (pool size: %d)", cfg.OxiDBHost, cfg.OxiDBPort, pool.Size())
		blobs := storage.NewBlobStore(pool, cfg.UploadBucket)
		if err := blobs.EnsureBucket(); err != nil {
			log.Fatalf("Failed to create bucket %s: %v", cfg.UploadBucket, err)
		}
		files = blobs
	default:
		local, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to prepare upload dir: %v", err)
		}
		files = local
	}
	log.Printf("Upload storage: %s", cfg.Storage)

	// Repositories
	userRepo := repository.NewUserRepo(conn)
	tableRepo := repository.NewTableRepo(conn)
	recordRepo := repository.NewRecordRepo(conn)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	tableSvc := service.NewTableService(tableRepo, cfg.TablePrefix)
	recordSvc := service.NewRecordService(tableSvc, recordRepo, files)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.SeedAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPass); err != nil {
		log.Printf("Warning: failed to seed admin: %v", err)
	}
	cancel()

	// Router
	r := router.New(cfg.JWTSecret, cfg.CORSOrigin, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Tables:    handler.NewTableHandler(tableSvc, cfg.AssetBaseURL),
		Records:   handler.NewRecordHandler(recordSvc, cfg.ListExclude, cfg.MaxUploadBytes),
		Files:     handler.NewFileHandler(files),
		Dashboard: handler.NewDashboardHandler(tableSvc, recordSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("CMS server starting on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
