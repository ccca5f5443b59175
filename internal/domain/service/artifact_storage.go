package service

import (
	"context"
)

// ArtifactMetadata describes a binary object handed to ArtifactStorage.
type ArtifactMetadata struct {
	Key         string // Object key to store the data under.
	ContentType string // MIME type of the data.
}

// ArtifactStorage is the durable binary object store backing uploaded artifacts.
type ArtifactStorage interface {
	// Store writes data under meta.Key and returns the stored key.
	Store(ctx context.Context, data []byte, meta ArtifactMetadata) (string, error)

	// Remove deletes the given keys. Missing keys are ignored, transient failures are retried
	// and permanent failures are logged and swallowed: removal runs inside cleanup paths
	// and must never mask the error that triggered the cleanup.
	Remove(ctx context.Context, keys ...string)
}
