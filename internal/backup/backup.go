// Package backup periodically snapshots the SQLite database and uploads it
// to S3-compatible storage. It is optional: without a configured bucket the
// manager stays disabled and the app runs normally.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const keyPrefix = "snapshots/"

// s3API narrows the AWS client to the calls the manager makes, for tests.
type s3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds backup settings, read from the environment in main.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string

	DBPath   string
	Interval time.Duration
	Retain   int // snapshots to keep; older ones are pruned
}

// Manager runs the snapshot loop.
type Manager struct {
	cfg    Config
	db     *sql.DB
	client s3API
	logger *slog.Logger
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Retain <= 0 {
		cfg.Retain = 14
	}

	m := &Manager{cfg: cfg, db: db, logger: logger}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if opts.Region == "" {
		opts.Region = "auto"
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the manager has a configured destination.
func (m *Manager) Enabled() bool {
	return m.client != nil
}

// Start runs the snapshot loop until ctx is canceled. Failures are logged
// and retried on the next tick; the app never depends on backup success.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		m.logger.Info("backup disabled: no bucket configured")
		return
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.RunOnce(ctx); err != nil {
				m.logger.Error("backup failed", "error", err)
			}
		}
	}
}

// RunOnce checkpoints the WAL, copies the database file, uploads the copy,
// and prunes snapshots beyond the retention count.
func (m *Manager) RunOnce(ctx context.Context) error {
	if !m.Enabled() {
		return fmt.Errorf("backup not configured")
	}

	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}

	snapshot := filepath.Join(os.TempDir(), fmt.Sprintf("grocerly-snapshot-%d.db", time.Now().UnixNano()))
	defer os.Remove(snapshot)

	if err := copyFile(m.cfg.DBPath, snapshot); err != nil {
		return fmt.Errorf("copy database: %w", err)
	}

	key := keyPrefix + "grocerly-" + time.Now().UTC().Format("2006-01-02T150405Z") + ".db"
	if err := m.upload(ctx, snapshot, key); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	m.logger.Info("backup uploaded", "key", key)

	if err := m.prune(ctx); err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	return nil
}

func (m *Manager) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	return err
}

// prune deletes the oldest snapshots past the retention count. Keys embed a
// UTC timestamp, so lexicographic order is chronological.
func (m *Manager) prune(ctx context.Context) error {
	out, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.cfg.Bucket),
		Prefix: aws.String(keyPrefix),
	})
	if err != nil {
		return err
	}

	var keys []string
	for _, obj := range out.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	if len(keys) <= m.cfg.Retain {
		return nil
	}

	sort.Strings(keys)
	for _, key := range keys[:len(keys)-m.cfg.Retain] {
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			return err
		}
		m.logger.Info("backup pruned", "key", key)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
