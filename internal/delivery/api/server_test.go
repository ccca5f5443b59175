package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace/config"
	"marketplace/internal/delivery/api/middleware"
	"marketplace/internal/delivery/api/router"
	"marketplace/internal/delivery/api/router/handler"
	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/infra/auth"
	"marketplace/internal/infra/persistence/memory"
	"marketplace/internal/infra/storage"
	"marketplace/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"golang.org/x/crypto/bcrypt"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type testAPI struct {
	echo   *echo.Echo
	store  *memory.Store
	tokens service.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost, AccessTokenTTL: time.Hour},
		Artifacts: &config.ArtifactsConfig{
			MaxSizeBytes:   1 << 20,
			AllowedTypes:   []string{"image/jpeg", "image/png", "application/pdf"},
			DeleteAttempts: 1,
			DeleteDelay:    time.Millisecond,
		},
		Saga: &config.SagaConfig{
			CompensationAttempts: 2,
			InitialInterval:      time.Millisecond,
			MaxInterval:          time.Millisecond,
		},
	}
	cfg.HTTP.MaxRequestBodySize = "4M"
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore(logger)
	repos := store.Repositories()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	routerParams := router.RouterParams{
		AccountHandler: handler.NewAccountHandler(handler.AccountHandlerParams{
			AccountUC: impl.NewAccountService(impl.AccountServiceParams{
				TxManager:       store,
				AccountRepo:     repos.AccountRepo(),
				RoleProfileRepo: repos.RoleProfileRepo(),
				Hasher:          auth.NewBcryptHasher(cfg),
				TokenService:    tokens,
				Storage:         storage.NewBlobStorage(bucket, logger, 1, time.Millisecond),
				Config:          cfg,
				Logger:          logger,
			}),
			TokenSvc: tokens,
			Cfg:      cfg,
		}),
		AdminHandler: handler.NewAdminHandler(handler.AdminHandlerParams{
			ApprovalUC: impl.NewApprovalService(impl.ApprovalServiceParams{TxManager: store, Logger: logger}),
		}),
		CartHandler: handler.NewCartHandler(handler.CartHandlerParams{
			CartUC: impl.NewCartService(impl.CartServiceParams{TxManager: store, CartRepo: repos.CartRepo(), Logger: logger}),
		}),
		OrderHandler: handler.NewOrderHandler(handler.OrderHandlerParams{
			CheckoutUC: impl.NewCheckoutService(impl.CheckoutServiceParams{TxManager: store, CartRepo: repos.CartRepo(), Logger: logger}),
			OrderUC:    impl.NewOrderService(impl.OrderServiceParams{TxManager: store, OrderRepo: repos.OrderRepo(), Logger: logger}),
		}),
		AuthMiddleware: middleware.NewAuthMiddleware(tokens),
	}

	return &testAPI{
		echo:   NewEcho(cfg, logger, routerParams),
		store:  store,
		tokens: tokens,
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	return a.send(t, req, token)
}

func (a *testAPI) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return rec, env
}

func (a *testAPI) tokenFor(t *testing.T, role entity.Role) (uuid.UUID, string) {
	t.Helper()

	id := uuid.New()
	a.store.SeedAccount(&entity.Account{
		ID:     id,
		Name:   "seeded " + role.String(),
		Email:  id.String() + "@example.com",
		Phone:  "+1555" + id.String()[:7],
		Role:   role,
		Status: entity.AccountStatusActive,
	})
	token, err := a.tokens.IssueToken(id, role)
	require.NoError(t, err)

	return id, token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return out
}

func registerBody(role, email, phone string) map[string]string {
	return map[string]string{
		"name":     "Maya Lopez",
		"email":    email,
		"phone":    phone,
		"password": "s3cret-pass",
		"role":     role,
	}
}

func TestAPI_HealthEchoesRequestID(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "req-123")
	rec, env := a.send(t, req, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Equal(t, "req-123", env.Meta.RequestID)
}

func TestAPI_RegisterClientAndLogin(t *testing.T) {
	a := newTestAPI(t)

	rec, env := a.do(t, http.MethodPost, "/auth/register", "", registerBody("client", "Maya@Example.com", "+15550001111"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	registered := decode[handler.AuthResponse](t, env)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.Equal(t, int64(3600), registered.ExpiresIn)
	assert.Equal(t, entity.RoleClient, registered.Account.Role)
	assert.Nil(t, registered.RoleProfile)

	rec, env = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    registered.Account.Email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, registered.Account.ID, decode[handler.AuthResponse](t, env).Account.ID)

	rec, env = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    registered.Account.Email,
		"password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Reason)
}

func TestAPI_RegisterDuplicateIsConflict(t *testing.T) {
	a := newTestAPI(t)

	rec, _ := a.do(t, http.MethodPost, "/auth/register", "", registerBody("client", "dup@example.com", "+15550002222"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := a.do(t, http.MethodPost, "/auth/register", "", registerBody("client", "dup@example.com", "+15550003333"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)
	assert.Equal(t, "ACCOUNT_ALREADY_EXISTS", env.Error.Reason)
}

func TestAPI_RegisterDeliveryAgentMultipart(t *testing.T) {
	a := newTestAPI(t)

	newForm := func(phone string, documents int) *http.Request {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		fields := map[string]string{
			"name":        "Sam Rider",
			"email":       uuid.NewString() + "@example.com",
			"phone":       phone,
			"password":    "s3cret-pass",
			"role":        "delivery_agent",
			"vehicleType": "motorbike",
		}
		for k, v := range fields {
			require.NoError(t, writer.WriteField(k, v))
		}

		part, err := writer.CreateFormFile("profilePhoto", "me.png")
		require.NoError(t, err)
		_, err = part.Write(pngBytes)
		require.NoError(t, err)

		for range documents {
			part, err := writer.CreateFormFile("identityDocuments", "license.jpg")
			require.NoError(t, err)
			_, err = part.Write(jpegBytes)
			require.NoError(t, err)
		}
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/auth/register", &body)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())

		return req
	}

	rec, env := a.send(t, newForm("+15550005551", 2), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	out := decode[handler.AuthResponse](t, env)
	require.NotNil(t, out.RoleProfile)
	assert.Equal(t, entity.ApprovalPending, out.RoleProfile.Approval)
	assert.Len(t, out.RoleProfile.Artifacts, 3)
	require.NotNil(t, out.RoleProfile.DeliveryAgent)
	assert.Equal(t, "motorbike", out.RoleProfile.DeliveryAgent.VehicleType)

	rec, env = a.send(t, newForm("+15550005552", 1), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	assert.Contains(t, env.Error.Message, "license photos")
}

func TestAPI_AdminReviewRequiresAdmin(t *testing.T) {
	a := newTestAPI(t)

	rec, env := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":         "Rosa",
		"email":        "rosa@example.com",
		"phone":        "+15550004444",
		"password":     "s3cret-pass",
		"role":         "partner",
		"description":  "Home cooking",
		"category":     "restaurant",
		"bank_account": "DE89370400440532013000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	partner := decode[handler.AuthResponse](t, env)
	approvePath := "/admin/role-profiles/" + partner.Account.ID.String() + "/approve"

	rec, env = a.do(t, http.MethodPost, approvePath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	rec, env = a.do(t, http.MethodPost, approvePath, partner.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	_, adminToken := a.tokenFor(t, entity.RoleAdmin)
	rec, env = a.do(t, http.MethodPost, approvePath, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, entity.ApprovalApproved, decode[handler.RoleProfileResponse](t, env).Approval)

	rejectPath := "/admin/role-profiles/" + partner.Account.ID.String() + "/reject"
	rec, env = a.do(t, http.MethodPost, rejectPath, adminToken, map[string]string{"reason": "  blurry license  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rejected := decode[handler.RoleProfileResponse](t, env)
	assert.Equal(t, entity.ApprovalRejected, rejected.Approval)
	assert.Equal(t, "blurry license", rejected.RejectionReason)

	rec, env = a.do(t, http.MethodPost, "/admin/role-profiles/not-a-uuid/approve", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestAPI_CartCheckoutAndOrderLifecycle(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.tokenFor(t, entity.RoleClient)
	_, adminToken := a.tokenFor(t, entity.RoleAdmin)
	agentID, agentToken := a.tokenFor(t, entity.RoleDeliveryAgent)

	stock := int64(5)
	item := &entity.CatalogItem{ID: uuid.New(), PartnerID: uuid.New(), Name: "Pizza", Price: 500, Stock: &stock}
	a.store.SeedCatalogItem(item)

	rec, env := a.do(t, http.MethodPut, "/cart/items/"+item.ID.String(), token, map[string]int64{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decode[handler.CartResponse](t, env)
	assert.Equal(t, int64(1000), cart.Total)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(1000), cart.Lines[0].Amount)

	rec, env = a.do(t, http.MethodPut, "/cart/items/"+item.ID.String(), token, map[string]int64{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	rec, env = a.do(t, http.MethodPut, "/cart/items/"+item.ID.String(), token, map[string]int64{"quantity": math.MaxInt64 / 250})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	checkout := map[string]any{
		"delivery_fee":   100,
		"address":        "1 Main St",
		"phone":          "+15550001111",
		"payment_method": "cash",
	}
	rec, env = a.do(t, http.MethodPost, "/checkout", token, checkout)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[handler.OrderResponse](t, env)
	assert.Equal(t, int64(1100), order.Total)
	assert.Equal(t, entity.OrderStatusPending, order.Status)

	rec, env = a.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[handler.CartResponse](t, env).Lines)

	rec, env = a.do(t, http.MethodPost, "/checkout", token, checkout)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
	assert.Equal(t, "EMPTY_CART", env.Error.Reason)

	orderPath := "/orders/" + order.ID.String()
	rec, _ = a.do(t, http.MethodGet, orderPath, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = a.do(t, http.MethodPatch, orderPath+"/agent", token, map[string]string{"agent_id": agentID.String()})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rec, env = a.do(t, http.MethodPatch, orderPath+"/agent", adminToken, map[string]string{"agent_id": agentID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assigned := decode[handler.OrderResponse](t, env)
	require.NotNil(t, assigned.AssignedAgentID)
	assert.Equal(t, agentID, *assigned.AssignedAgentID)

	rec, env = a.do(t, http.MethodPatch, orderPath+"/status", agentToken, map[string]string{"status": "out_for_delivery"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, entity.OrderStatusOutForDelivery, decode[handler.OrderResponse](t, env).Status)
}

func TestAPI_CheckoutInsufficientStock(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.tokenFor(t, entity.RoleClient)

	stock := int64(1)
	item := &entity.CatalogItem{ID: uuid.New(), PartnerID: uuid.New(), Name: "Soup", Price: 300, Stock: &stock}
	a.store.SeedCatalogItem(item)

	rec, _ := a.do(t, http.MethodPut, "/cart/items/"+item.ID.String(), token, map[string]int64{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := a.do(t, http.MethodPost, "/checkout", token, map[string]any{
		"delivery_fee":   0,
		"address":        "1 Main St",
		"phone":          "+15550001111",
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)
}

func TestAPI_InternalErrorsAreGeneric(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.tokenFor(t, entity.RoleClient)
	a.store.FailNext(memory.OpCartClear, errors.New("disk on fire"))

	req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "req-500")
	rec, env := a.send(t, req, token)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", env.Error.Code)
	assert.False(t, strings.Contains(env.Error.Message, "disk"))
	assert.Equal(t, "req-500", env.Meta.RequestID)
}

func TestAPI_RejectsMalformedTokens(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic Zm9vOmJhcg==")
	rec, env := a.send(t, req, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	rec, env = a.do(t, http.MethodGet, "/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)
}

func TestAPI_UnknownRouteUsesEnvelope(t *testing.T) {
	a := newTestAPI(t)

	rec, env := a.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
