// Package storage holds the artifact store backed by gocloud.dev/blob buckets.
package storage

import (
	"context"
	"log/slog"
	"time"

	"marketplace/config"
	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/util"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// metadataChecksum is the blob metadata key holding the SHA256 of the artifact.
const metadataChecksum = "sha256"

// BlobStorage stores artifacts in a bucket opened from a URL (file://, mem://, gs://, s3://).
type BlobStorage struct {
	bucket   *blob.Bucket
	logger   *slog.Logger
	attempts uint
	delay    time.Duration

	// deleteObject is swapped in tests to simulate flaky backends.
	deleteObject func(ctx context.Context, key string) error
}

// BlobStorageParams holds dependencies for BlobStorage, injected by Fx
type BlobStorageParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewArtifactStorage opens the configured bucket and closes it on shutdown.
func NewArtifactStorage(params BlobStorageParams) (service.ArtifactStorage, error) {
	cfg := params.Config.Artifacts

	bucket, err := blob.OpenBucket(params.Ctx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open artifact bucket %q", cfg.BucketURL)
	}

	storage := NewBlobStorage(bucket, params.Logger, cfg.DeleteAttempts, cfg.DeleteDelay)

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Closing artifact bucket")

			return bucket.Close()
		},
	})

	params.Logger.Info("Artifact storage ready", slog.String("bucket_url", cfg.BucketURL))

	return storage, nil
}

// NewBlobStorage wraps an already opened bucket.
func NewBlobStorage(bucket *blob.Bucket, logger *slog.Logger, attempts uint, delay time.Duration) *BlobStorage {
	if attempts == 0 {
		attempts = 1
	}

	return &BlobStorage{
		bucket:       bucket,
		logger:       logger,
		attempts:     attempts,
		delay:        delay,
		deleteObject: bucket.Delete,
	}
}

// Store writes data under meta.Key.
func (s *BlobStorage) Store(ctx context.Context, data []byte, meta service.ArtifactMetadata) (string, error) {
	if meta.Key == "" {
		return "", errors.New("artifact key is required")
	}

	opts := &blob.WriterOptions{
		ContentType: meta.ContentType,
		Metadata:    map[string]string{metadataChecksum: util.Checksum(data)},
	}
	if err := s.bucket.WriteAll(ctx, meta.Key, data, opts); err != nil {
		return "", errors.Wrapf(err, "failed to write artifact %q", meta.Key)
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Debug("Artifact stored",
		slog.String("key", meta.Key),
		slog.String("size", util.FormatBytes(int64(len(data)))),
	)

	return meta.Key, nil
}

// Remove deletes every key on a best-effort basis. It never returns an error.
func (s *BlobStorage) Remove(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		s.removeOne(ctx, key)
	}
}

func (s *BlobStorage) removeOne(ctx context.Context, key string) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := s.deleteObject(ctx, key)
		switch {
		case err == nil, gcerrors.Code(err) == gcerrors.NotFound:
			return struct{}{}, nil
		case isTransient(err):
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.delay)),
		backoff.WithMaxTries(s.attempts),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		logger.Error("Failed to remove artifact",
			slog.String("key", key),
			slog.Any("error", err),
		)

		return
	}

	logger.Debug("Artifact removed", slog.String("key", key))
}

// isTransient reports whether a delete failure is a lock/busy style condition worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return isTransientCode(gcerrors.Code(err))
}

func isTransientCode(code gcerrors.ErrorCode) bool {
	switch code {
	case gcerrors.ResourceExhausted, gcerrors.DeadlineExceeded,
		gcerrors.FailedPrecondition, gcerrors.Internal:
		return true
	default:
		return false
	}
}
