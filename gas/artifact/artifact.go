// Package artifact stores rendered figures on the local filesystem, in memory, or in an
// S3-compatible bucket.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Driver identifies a store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// Environment variables read by Open.
//
//	LINETILES_ARTIFACT_DRIVER: fs|s3|memory (default fs)
//	LINETILES_ARTIFACT_FS_ROOT: directory root when driver=fs (default ./plots)
//	LINETILES_ARTIFACT_S3_BUCKET: bucket when driver=s3 (required)
//	LINETILES_ARTIFACT_S3_REGION: region (default us-east-1)
//	LINETILES_ARTIFACT_S3_ENDPOINT: custom endpoint, e.g. MinIO
//	LINETILES_ARTIFACT_S3_PATH_STYLE: true|false
const (
	EnvDriver      = "LINETILES_ARTIFACT_DRIVER"
	EnvFSRoot      = "LINETILES_ARTIFACT_FS_ROOT"
	EnvS3Bucket    = "LINETILES_ARTIFACT_S3_BUCKET"
	EnvS3Region    = "LINETILES_ARTIFACT_S3_REGION"
	EnvS3Endpoint  = "LINETILES_ARTIFACT_S3_ENDPOINT"
	EnvS3PathStyle = "LINETILES_ARTIFACT_S3_PATH_STYLE"
)

// Info describes a stored artifact.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store holds artifacts by key. Put replaces an existing key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	Driver() Driver
}

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("artifact not found")

// Open selects a Store from the environment.
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv(EnvDriver)
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv(EnvFSRoot))
	case DriverS3:
		bucket := os.Getenv(EnvS3Bucket)
		if bucket == "" {
			return nil, fmt.Errorf("%s required for s3 driver", EnvS3Bucket)
		}
		return NewS3(ctx, S3Config{
			Bucket:    bucket,
			Region:    os.Getenv(EnvS3Region),
			Endpoint:  os.Getenv(EnvS3Endpoint),
			PathStyle: strings.EqualFold(os.Getenv(EnvS3PathStyle), "true"),
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown artifact driver %s", driver)
	}
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid artifact key %q", key)
	}
	return nil
}
