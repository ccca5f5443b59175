package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"marketplace/config"
	"marketplace/internal/delivery/api/response"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const (
	formProfilePhoto      = "profilePhoto"
	formIdentityDocuments = "identityDocuments"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	TokenSvc  service.TokenService
	Cfg       *config.Config
}

// AccountHandler serves registration and login.
type AccountHandler struct {
	accountUC   usecase.AccountUsecase
	tokenSvc    service.TokenService
	maxArtifact int64
}

// NewAccountHandler is the constructor for AccountHandler
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC:   params.AccountUC,
		tokenSvc:    params.TokenSvc,
		maxArtifact: params.Cfg.Artifacts.MaxSizeBytes,
	}
}

// RegisterRequest carries the registration fields, sent as multipart form or JSON.
// Artifacts are only accepted as multipart files.
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`

	// Partner
	BusinessName string `json:"business_name" form:"businessName"`
	Description  string `json:"description" form:"description"`
	Category     string `json:"category" form:"category"`
	BankAccount  string `json:"bank_account" form:"bankAccount"`

	// Delivery agent
	VehicleType  string `json:"vehicle_type" form:"vehicleType"`
	LicensePlate string `json:"license_plate" form:"licensePlate"`
	PartnerName  string `json:"partner_name" form:"partnerName"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register provisions an account with its role profile and artifacts.
func (h *AccountHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errors.Wrap(domainerrors.ErrInvalidInput, "malformed registration form")
	}

	input := &usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     entity.Role(strings.TrimSpace(req.Role)),
	}
	switch input.Role {
	case entity.RolePartner:
		input.Partner = &usecase.PartnerDetailsInput{
			BusinessName: req.BusinessName,
			Description:  req.Description,
			Category:     req.Category,
			BankAccount:  req.BankAccount,
		}
	case entity.RoleDeliveryAgent:
		input.DeliveryAgent = &usecase.DeliveryAgentDetailsInput{
			VehicleType:  req.VehicleType,
			LicensePlate: req.LicensePlate,
			PartnerName:  req.PartnerName,
		}
	}

	if isMultipart(c) {
		if err := h.attachUploads(c, input); err != nil {
			return err
		}
	}

	out, err := h.accountUC.Register(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, h.authResponse(out.AccessToken, out.Account, out.RoleProfile))
}

// Login exchanges credentials for an access token.
func (h *AccountHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.accountUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, h.authResponse(out.AccessToken, out.Account, nil))
}

func (h *AccountHandler) authResponse(token string, account *entity.Account, profile *entity.RoleProfile) *AuthResponse {
	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokenSvc.TokenTTL().Seconds()),
		Account:     newAccountResponse(account),
		RoleProfile: newRoleProfileResponse(profile),
	}
}

func (h *AccountHandler) attachUploads(c echo.Context, input *usecase.RegisterInput) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errors.Wrap(domainerrors.ErrInvalidInput, "malformed multipart form")
	}

	if photos := form.File[formProfilePhoto]; len(photos) > 0 {
		if len(photos) > 1 {
			return errors.Wrap(domainerrors.ErrInvalidInput, "only one profile photo is accepted")
		}
		upload, err := h.readUpload(photos[0])
		if err != nil {
			return err
		}
		input.ProfilePhoto = &upload
	}

	for _, fh := range form.File[formIdentityDocuments] {
		upload, err := h.readUpload(fh)
		if err != nil {
			return err
		}
		input.IdentityDocuments = append(input.IdentityDocuments, upload)
	}

	return nil
}

// readUpload reads at most one byte past the size limit so oversize files are still reported as such.
func (h *AccountHandler) readUpload(fh *multipart.FileHeader) (entity.ArtifactUpload, error) {
	file, err := fh.Open()
	if err != nil {
		return entity.ArtifactUpload{}, errors.Wrapf(err, "open upload %q", fh.Filename)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxArtifact+1))
	if err != nil {
		return entity.ArtifactUpload{}, errors.Wrapf(err, "read upload %q", fh.Filename)
	}

	return entity.ArtifactUpload{Filename: fh.Filename, Data: data}, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
