// Package storage uploads exported files to object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Common errors for storage operations.
var (
	ErrUploadFailed       = errors.New("upload failed")
	ErrInvalidDestination = errors.New("invalid upload destination")
)

// ObjectStorage is the upload target for exported datasets.
type ObjectStorage interface {
	// Upload copies the local file at localPath to objectPath.
	Upload(ctx context.Context, localPath, objectPath string) error
	// Exists reports whether objectPath is present.
	Exists(ctx context.Context, objectPath string) (bool, error)
	// Location renders objectPath as a user-facing URI.
	Location(objectPath string) string
}

// Destination is a parsed upload target such as s3://bucket/prefix or
// file:///srv/exports.
type Destination struct {
	Scheme string
	Bucket string
	Prefix string
}

// ParseDestination accepts s3://bucket[/prefix], file:///dir or a bare
// directory path.
func ParseDestination(raw string) (Destination, error) {
	if raw == "" {
		return Destination{}, fmt.Errorf("%w: empty", ErrInvalidDestination)
	}
	if !strings.Contains(raw, "://") {
		return Destination{Scheme: "file", Prefix: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return Destination{}, fmt.Errorf("%w: missing bucket in %q", ErrInvalidDestination, raw)
		}
		return Destination{Scheme: "s3", Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
	case "file":
		if u.Path == "" {
			return Destination{}, fmt.Errorf("%w: missing path in %q", ErrInvalidDestination, raw)
		}
		return Destination{Scheme: "file", Prefix: u.Path}, nil
	}
	return Destination{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidDestination, u.Scheme)
}

// ObjectPath joins the destination prefix with name. For file destinations the
// prefix is the storage root, so only name is returned.
func (d Destination) ObjectPath(name string) string {
	if d.Scheme == "file" || d.Prefix == "" {
		return name
	}
	return path.Join(d.Prefix, name)
}

// Open builds the ObjectStorage for d.
func Open(ctx context.Context, d Destination, cfg S3Config) (ObjectStorage, error) {
	switch d.Scheme {
	case "s3":
		return NewS3Storage(ctx, d.Bucket, cfg)
	case "file":
		return NewLocalStorage(d.Prefix)
	}
	return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidDestination, d.Scheme)
}
