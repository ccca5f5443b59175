package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

func newTestStorage(t *testing.T) *BlobStorage {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	return NewBlobStorage(bucket, slog.New(slog.NewTextHandler(io.Discard, nil)), 3, time.Millisecond)
}

func TestStore_WritesObject(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	key, err := s.Store(ctx, []byte("photo"), service.ArtifactMetadata{Key: "accounts/1/profile_photo/0.jpg", ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "accounts/1/profile_photo/0.jpg", key)

	data, err := s.bucket.ReadAll(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("photo"), data)

	attrs, err := s.bucket.Attributes(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", attrs.ContentType)
	assert.Equal(t, util.Checksum([]byte("photo")), attrs.Metadata[metadataChecksum])
}

func TestStore_RequiresKey(t *testing.T) {
	_, err := newTestStorage(t).Store(context.Background(), []byte("x"), service.ArtifactMetadata{})
	assert.Error(t, err)
}

func TestRemove_DeletesExistingAndIgnoresMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.Store(ctx, []byte("doc"), service.ArtifactMetadata{Key: "a"})
	require.NoError(t, err)

	s.Remove(ctx, "a", "missing", "")

	exists, err := s.bucket.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRemove_RetriesTransientFailures(t *testing.T) {
	s := newTestStorage(t)

	calls := 0
	s.deleteObject = func(context.Context, string) error {
		calls++
		if calls < 3 {
			return context.DeadlineExceeded
		}

		return nil
	}

	s.Remove(context.Background(), "busy")
	assert.Equal(t, 3, calls)
}

func TestRemove_GivesUpAfterMaxAttempts(t *testing.T) {
	s := newTestStorage(t)

	calls := 0
	s.deleteObject = func(context.Context, string) error {
		calls++

		return context.DeadlineExceeded
	}

	assert.NotPanics(t, func() { s.Remove(context.Background(), "locked") })
	assert.Equal(t, 3, calls)
}

func TestRemove_DoesNotRetryPermanentFailures(t *testing.T) {
	s := newTestStorage(t)

	calls := 0
	s.deleteObject = func(context.Context, string) error {
		calls++

		return errors.New("permission denied")
	}

	s.Remove(context.Background(), "denied")
	assert.Equal(t, 1, calls)
}

func TestIsTransientCode(t *testing.T) {
	tests := []struct {
		code gcerrors.ErrorCode
		want bool
	}{
		{code: gcerrors.ResourceExhausted, want: true},
		{code: gcerrors.DeadlineExceeded, want: true},
		{code: gcerrors.FailedPrecondition, want: true},
		{code: gcerrors.Internal, want: true},
		{code: gcerrors.OK, want: false},
		{code: gcerrors.Unknown, want: false},
		{code: gcerrors.NotFound, want: false},
		{code: gcerrors.AlreadyExists, want: false},
		{code: gcerrors.InvalidArgument, want: false},
		{code: gcerrors.Unimplemented, want: false},
		{code: gcerrors.PermissionDenied, want: false},
		{code: gcerrors.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, isTransientCode(tt.code))
		})
	}
}

func TestIsTransient(t *testing.T) {
	s := newTestStorage(t)
	notFound := s.bucket.Delete(context.Background(), "missing")
	require.Equal(t, gcerrors.NotFound, gcerrors.Code(notFound))

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "wrapped deadline", err: errors.Wrap(context.DeadlineExceeded, "delete"), want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "bucket not found", err: notFound, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}
