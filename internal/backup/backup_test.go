package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nholt/grocerly/internal/database"
)

// fakeS3 records uploads in memory.
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	for i := range keys {
		out.Contents = append(out.Contents, types.Object{Key: &keys[i]})
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func setupBackupTest(t *testing.T, retain int) (*Manager, *fakeS3) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "grocerly.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := Config{
		Bucket:    "test-bucket",
		AccessKey: "test",
		SecretKey: "test",
		DBPath:    dbPath,
		Retain:    retain,
	}
	m := NewManager(cfg, db, slog.Default())

	fake := newFakeS3()
	m.client = fake
	return m, fake
}

func TestManagerDisabledWithoutBucket(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{DBPath: ":memory:"}, db, slog.Default())
	if m.Enabled() {
		t.Error("expected manager to be disabled without a bucket")
	}
	if err := m.RunOnce(context.Background()); err == nil {
		t.Error("expected RunOnce to fail when disabled")
	}
}

func TestRunOnceUploadsSnapshot(t *testing.T) {
	m, fake := setupBackupTest(t, 14)

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if len(fake.objects) != 1 {
		t.Fatalf("expected 1 uploaded object, got %d", len(fake.objects))
	}
	for key, data := range fake.objects {
		if filepath.Dir(key)+"/" != keyPrefix {
			t.Errorf("key %q not under prefix %q", key, keyPrefix)
		}
		if len(data) == 0 {
			t.Errorf("object %q is empty", key)
		}
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	m, fake := setupBackupTest(t, 2)

	fake.objects[keyPrefix+"grocerly-2026-01-01T000000Z.db"] = []byte("a")
	fake.objects[keyPrefix+"grocerly-2026-01-02T000000Z.db"] = []byte("b")
	fake.objects[keyPrefix+"grocerly-2026-01-03T000000Z.db"] = []byte("c")

	if err := m.prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	if len(fake.objects) != 2 {
		t.Fatalf("expected 2 objects after prune, got %d", len(fake.objects))
	}
	if _, ok := fake.objects[keyPrefix+"grocerly-2026-01-01T000000Z.db"]; ok {
		t.Error("oldest snapshot should have been pruned")
	}
	if _, ok := fake.objects[keyPrefix+"grocerly-2026-01-03T000000Z.db"]; !ok {
		t.Error("newest snapshot should survive")
	}
}

func TestPruneUnderRetentionNoop(t *testing.T) {
	m, fake := setupBackupTest(t, 5)

	fake.objects[keyPrefix+"grocerly-2026-01-01T000000Z.db"] = []byte("a")

	if err := m.prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(fake.objects) != 1 {
		t.Errorf("expected 1 object, got %d", len(fake.objects))
	}
}
