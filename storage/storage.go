package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// snapshotName is the object/file name holding the persisted corpus.
const snapshotName = "constitution_docs.json"

// ErrNotFound is returned by Load when no snapshot has been saved yet.
var ErrNotFound = errors.New("snapshot not found")

// Store persists the corpus snapshot between restarts. The snapshot content
// is opaque to the store.
type Store interface {
	// Save replaces the stored snapshot with the given data.
	Save(ctx context.Context, data io.Reader) error

	// Load returns the stored snapshot, or ErrNotFound when none exists.
	Load(ctx context.Context) (io.ReadCloser, error)
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStore creates a new snapshot store based on configuration
func NewStore(cfg StorageConfig) (Store, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStore(cfg.LocalPath)
	case StorageTypeS3:
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStoreFromEnv creates a snapshot store from environment variables
func NewStoreFromEnv() (Store, error) {
	storageType := os.Getenv("STORAGE_TYPE")
	if storageType == "" {
		storageType = "local" // Default to local for development
	}

	cfg := StorageConfig{
		Type: StorageType(storageType),
	}

	switch StorageType(storageType) {
	case StorageTypeLocal:
		localPath := os.Getenv("STORAGE_LOCAL_PATH")
		if localPath == "" {
			localPath = "./storage/data" // Default local storage path
		}
		cfg.LocalPath = localPath
		return NewLocalStore(cfg.LocalPath)

	case StorageTypeS3:
		cfg.S3Bucket = os.Getenv("AWS_S3_BUCKET")
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1" // Default region
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}

		return NewS3Store(cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
