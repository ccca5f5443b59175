package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"marketplace/config"
	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/infra/auth"
	"marketplace/internal/infra/persistence/memory"
	"marketplace/internal/infra/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
	"golang.org/x/crypto/bcrypt"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	pdfBytes  = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost, AccessTokenTTL: time.Hour},
		Artifacts: &config.ArtifactsConfig{
			MaxSizeBytes:   1 << 20,
			AllowedTypes:   []string{"image/jpeg", "image/png", "image/webp", "application/pdf"},
			DeleteAttempts: 2,
			DeleteDelay:    time.Millisecond,
		},
		Saga: &config.SagaConfig{
			CompensationAttempts: 3,
			InitialInterval:      time.Millisecond,
			MaxInterval:          time.Millisecond,
		},
	}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"

	return cfg
}

// mockPublisher records published events.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event *service.StateChangeEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

// flakyStorage fails Store after a number of successful writes.
type flakyStorage struct {
	service.ArtifactStorage
	storesBeforeFailure int
	stores              int
}

func (s *flakyStorage) Store(ctx context.Context, data []byte, meta service.ArtifactMetadata) (string, error) {
	if s.stores >= s.storesBeforeFailure {
		return "", errors.New("bucket unavailable")
	}
	s.stores++

	return s.ArtifactStorage.Store(ctx, data, meta)
}

// serviceFixtures holds every service wired on top of one memory store and bucket.
type serviceFixtures struct {
	store     *memory.Store
	bucket    *blob.Bucket
	storage   service.ArtifactStorage
	tokens    service.TokenService
	hasher    service.PasswordHasher
	publisher *mockPublisher
	config    *config.Config

	accounts  *accountService
	approvals *approvalService
	carts     *cartService
	checkout  *checkoutService
	orders    *orderService
}

func newServiceFixtures(t *testing.T) *serviceFixtures {
	t.Helper()

	cfg := newTestConfig()
	logger := newDiscardLogger()

	store := memory.NewStore(logger)
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	f := &serviceFixtures{
		store:     store,
		bucket:    bucket,
		storage:   storage.NewBlobStorage(bucket, logger, cfg.Artifacts.DeleteAttempts, cfg.Artifacts.DeleteDelay),
		tokens:    tokens,
		hasher:    auth.NewBcryptHasher(cfg),
		publisher: publisher,
		config:    cfg,
	}
	f.rebuild()

	return f
}

// rebuild recreates the services, picking up any replaced collaborator.
func (f *serviceFixtures) rebuild() {
	logger := newDiscardLogger()
	repos := f.store.Repositories()

	f.accounts = NewAccountService(AccountServiceParams{
		TxManager:       f.store,
		AccountRepo:     repos.AccountRepo(),
		RoleProfileRepo: repos.RoleProfileRepo(),
		Hasher:          f.hasher,
		TokenService:    f.tokens,
		Storage:         f.storage,
		Publisher:       f.publisher,
		Config:          f.config,
		Logger:          logger,
	}).(*accountService)

	f.approvals = NewApprovalService(ApprovalServiceParams{
		TxManager: f.store,
		Publisher: f.publisher,
		Logger:    logger,
	}).(*approvalService)

	f.carts = NewCartService(CartServiceParams{
		TxManager: f.store,
		CartRepo:  repos.CartRepo(),
		Logger:    logger,
	}).(*cartService)

	f.checkout = NewCheckoutService(CheckoutServiceParams{
		TxManager: f.store,
		CartRepo:  repos.CartRepo(),
		Publisher: f.publisher,
		Logger:    logger,
	}).(*checkoutService)

	f.orders = NewOrderService(OrderServiceParams{
		TxManager: f.store,
		OrderRepo: repos.OrderRepo(),
		Publisher: f.publisher,
		Logger:    logger,
	}).(*orderService)
}

func (f *serviceFixtures) repos() repository.RepositoryFactory {
	return f.store.Repositories()
}

// bucketKeys lists every object currently in the artifact bucket.
func (f *serviceFixtures) bucketKeys(t *testing.T) []string {
	t.Helper()

	var keys []string
	iter := f.bucket.List(nil)
	for {
		obj, err := iter.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return keys
		}
		require.NoError(t, err)
		keys = append(keys, obj.Key)
	}
}

func (f *serviceFixtures) seedItem(name string, price int64, stock *int64) *entity.CatalogItem {
	item := &entity.CatalogItem{
		ID:        uuid.New(),
		PartnerID: uuid.New(),
		Name:      name,
		Price:     price,
		Stock:     stock,
		UpdatedAt: time.Now().UTC(),
	}
	f.store.SeedCatalogItem(item)

	return item
}

func (f *serviceFixtures) seedAccount(role entity.Role) *entity.Account {
	id := uuid.New()
	account := &entity.Account{
		ID:     id,
		Name:   string(role) + " account",
		Email:  id.String() + "@example.com",
		Phone:  "+1555" + id.String()[:7],
		Role:   role,
		Status: entity.AccountStatusActive,
	}
	f.store.SeedAccount(account)

	return account
}

func (f *serviceFixtures) stockOf(t *testing.T, id uuid.UUID) int64 {
	t.Helper()

	item, err := f.repos().CatalogRepo().FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, item.Stock)

	return *item.Stock
}

func ptr[T any](v T) *T {
	return &v
}
