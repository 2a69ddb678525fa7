package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nholt/grocerly/internal/backup"
	"github.com/nholt/grocerly/internal/database"
	"github.com/nholt/grocerly/internal/logging"
	"github.com/nholt/grocerly/internal/server"
)

func main() {
	port := os.Getenv("GROCERLY_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("GROCERLY_DB_PATH")
	if dbPath == "" {
		dbPath = "grocerly.db"
	}

	logger := logging.Setup(os.Getenv("GROCERLY_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, logger)

	backupCfg := backup.Config{
		Endpoint:  os.Getenv("GROCERLY_BACKUP_S3_ENDPOINT"),
		Bucket:    os.Getenv("GROCERLY_BACKUP_S3_BUCKET"),
		Region:    os.Getenv("GROCERLY_BACKUP_S3_REGION"),
		AccessKey: os.Getenv("GROCERLY_BACKUP_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("GROCERLY_BACKUP_S3_SECRET_KEY"),
		DBPath:    dbPath,
	}
	backupMgr := backup.NewManager(backupCfg, db, logger.With("component", "backup"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go backupMgr.Start(ctx)
	go cleanupLoop(ctx, srv)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Grocerly running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// cleanupLoop purges expired sessions and stale rate-limit entries hourly.
func cleanupLoop(ctx context.Context, srv *server.Server) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := srv.SessionStore().DeleteExpired(); err != nil {
				log.Printf("session cleanup: %v", err)
			}
			srv.RateLimiter().Cleanup()
		}
	}
}
