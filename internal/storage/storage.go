package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned when object storage is not configured.
var ErrDisabled = errors.New("object storage is not configured")

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectStorage captures the minimal S3-compatible operations exports need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Disabled rejects every call with ErrDisabled.
type Disabled struct{}

func (Disabled) ListObjects(context.Context, string) ([]ObjectInfo, error) {
	return nil, ErrDisabled
}

func (Disabled) UploadObject(context.Context, string, []byte, string) error {
	return ErrDisabled
}
