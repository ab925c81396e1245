package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	tests := []struct {
		name string
		cfg  Config
		want Driver
	}{
		{name: "default is filesystem", cfg: Config{FSRoot: root}, want: DriverFilesystem},
		{name: "memory", cfg: Config{Driver: DriverMemory}, want: DriverMemory},
		{name: "s3", cfg: Config{Driver: DriverS3, S3: S3Config{Bucket: "plants", Region: "eu-west-1"}}, want: DriverS3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, err := Open(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if store.Driver() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, store.Driver())
			}
		})
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, Config{Driver: "tape"}); err == nil || !strings.Contains(err.Error(), "tape") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("NURSERY_BLOB_DRIVER", "MEMORY")
	t.Setenv("NURSERY_BLOB_FS_ROOT", "/srv/saves")
	t.Setenv("NURSERY_BLOB_S3_BUCKET", "greenhouse")
	t.Setenv("NURSERY_BLOB_S3_PATH_STYLE", "TRUE")
	cfg := ConfigFromEnv()
	if cfg.Driver != DriverMemory || cfg.FSRoot != "/srv/saves" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.S3.Bucket != "greenhouse" || !cfg.S3.PathStyle {
		t.Fatalf("unexpected s3 config %+v", cfg.S3)
	}
	store, err := OpenFromEnv(context.Background())
	if err != nil || store.Driver() != DriverMemory {
		t.Fatalf("expected memory store from env, got %v", err)
	}
}

func TestBackendsShareErrorContract(t *testing.T) {
	ctx := context.Background()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem: %v", err)
	}
	for _, store := range []Store{fsStore, NewMemory(), NewMockS3ForTests()} {
		t.Run(string(store.Driver()), func(t *testing.T) {
			if _, err := store.Put(ctx, "slot.sav", strings.NewReader("x"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Put(ctx, "slot.sav", strings.NewReader("y"), PutOptions{}); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}
			if _, err := store.Head(ctx, "missing.sav"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}
