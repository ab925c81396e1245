package blob

import (
	"context"
	"fmt"
	"os"
	"strings"

	fsstore "nurserycore/internal/infra/blob/fs"
	memorystore "nurserycore/internal/infra/blob/memory"
	infraS3 "nurserycore/internal/infra/blob/s3"
)

// S3Config re-exports the S3 backend configuration.
type S3Config = infraS3.Config

// Config selects and configures a backend. An empty Driver means fs.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}

// ConfigFromEnv reads the backend selection from the process environment:
//
//	NURSERY_BLOB_DRIVER: fs|s3|memory (default fs)
//	NURSERY_BLOB_FS_ROOT: directory root when driver=fs (default ./savedata)
//	NURSERY_BLOB_S3_BUCKET, NURSERY_BLOB_S3_REGION, NURSERY_BLOB_S3_ENDPOINT,
//	NURSERY_BLOB_S3_PATH_STYLE=true|false
//
// AWS credentials come from the default AWS chain.
func ConfigFromEnv() Config {
	return Config{
		Driver: Driver(strings.ToLower(os.Getenv("NURSERY_BLOB_DRIVER"))),
		FSRoot: os.Getenv("NURSERY_BLOB_FS_ROOT"),
		S3: S3Config{
			Bucket:    os.Getenv("NURSERY_BLOB_S3_BUCKET"),
			Region:    os.Getenv("NURSERY_BLOB_S3_REGION"),
			Endpoint:  os.Getenv("NURSERY_BLOB_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("NURSERY_BLOB_S3_PATH_STYLE"), "true"),
		},
	}
}

// OpenFromEnv is Open(ctx, ConfigFromEnv()).
func OpenFromEnv(ctx context.Context) (Store, error) {
	return Open(ctx, ConfigFromEnv())
}

// NewFilesystem returns a directory-backed Store.
func NewFilesystem(root string) (Store, error) {
	return fsstore.New(root)
}

// NewMemory returns an in-memory Store.
func NewMemory() Store { return memorystore.New() }

// NewS3 returns a bucket-backed Store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 blob driver requires a bucket (NURSERY_BLOB_S3_BUCKET)")
	}
	return infraS3.New(ctx, cfg)
}

// NewMockS3ForTests exposes the in-process S3 fake for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
