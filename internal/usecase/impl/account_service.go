package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"marketplace/config"
	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/usecase"
	"marketplace/internal/usecase/saga"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager       repository.TransactionManager
	accountRepo     repository.AccountRepository
	roleProfileRepo repository.RoleProfileRepository
	hasher          service.PasswordHasher
	tokenService    service.TokenService
	storage         service.ArtifactStorage
	publisher       service.EventPublisher
	saga            *saga.Runner
	policy          artifactPolicy
	validator       *inputValidator
	logger          *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager       repository.TransactionManager
	AccountRepo     repository.AccountRepository
	RoleProfileRepo repository.RoleProfileRepository
	Hasher          service.PasswordHasher
	TokenService    service.TokenService
	Storage         service.ArtifactStorage
	Publisher       service.EventPublisher `optional:"true"`
	Config          *config.Config
	Logger          *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	policy := saga.RetryPolicy{}
	if params.Config != nil && params.Config.Saga != nil {
		policy = saga.RetryPolicy{
			Attempts:        params.Config.Saga.CompensationAttempts,
			InitialInterval: params.Config.Saga.InitialInterval,
			MaxInterval:     params.Config.Saga.MaxInterval,
		}
	}

	return &accountService{
		txManager:       params.TxManager,
		accountRepo:     params.AccountRepo,
		roleProfileRepo: params.RoleProfileRepo,
		hasher:          params.Hasher,
		tokenService:    params.TokenService,
		storage:         params.Storage,
		publisher:       params.Publisher,
		saga:            saga.NewRunner(params.Logger, policy),
		policy:          newArtifactPolicy(params.Config),
		validator:       newInputValidator(),
		logger:          params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// registration carries the state shared between saga steps.
type registration struct {
	account *entity.Account
	details entity.ProfileDetails
	staged  []stagedArtifact
	refs    []entity.ArtifactRef
	profile *entity.RoleProfile
	token   string
}

// Register provisions an account, its role profile and artifacts as one logical unit.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	output, err := srv.register(ctx, input)
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "register", err)
	}

	publishEvent(ctx, srv.publisher, srv.log(ctx), &service.StateChangeEvent{
		Type:       service.EventAccountRegistered,
		EntityID:   output.Account.ID.String(),
		AccountID:  output.Account.ID.String(),
		Attributes: map[string]string{"role": output.Account.Role.String()},
		OccurredAt: output.Account.CreatedAt,
	})

	return output, nil
}

func (srv *accountService) register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	if err := srv.validator.check(input); err != nil {
		return nil, err
	}

	exists, err := srv.accountRepo.ExistsByContact(ctx, input.Email, input.Phone)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check contact uniqueness")
	}
	if exists {
		return nil, domainerrors.ErrAccountAlreadyExists
	}

	reg, err := srv.prepare(input)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Starting registration",
		slog.String("account_id", reg.account.ID.String()),
		slog.String("role", reg.account.Role.String()),
		slog.Int("artifacts", len(reg.staged)),
	)

	if err := srv.saga.Run(ctx, srv.registrationSteps(input, reg)...); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Registration completed", slog.String("account_id", reg.account.ID.String()))

	return &usecase.RegisterOutput{
		Account:     reg.account,
		RoleProfile: reg.profile,
		AccessToken: reg.token,
	}, nil
}

// prepare runs every check that needs no writes and builds the records to persist.
func (srv *accountService) prepare(input *usecase.RegisterInput) (*registration, error) {
	reg := &registration{}

	switch input.Role {
	case entity.RolePartner:
		if input.Partner == nil {
			return nil, errors.Wrap(domainerrors.ErrInvalidInput, "partner details are required")
		}
		if err := srv.validator.check(input.Partner); err != nil {
			return nil, err
		}
		businessName := strings.TrimSpace(input.Partner.BusinessName)
		if businessName == "" {
			businessName = input.Name
		}
		reg.details = &entity.PartnerProfile{
			BusinessName: businessName,
			Description:  strings.TrimSpace(input.Partner.Description),
			Category:     strings.TrimSpace(input.Partner.Category),
			BankAccount:  strings.TrimSpace(input.Partner.BankAccount),
		}

	case entity.RoleDeliveryAgent:
		if input.DeliveryAgent == nil {
			return nil, errors.Wrap(domainerrors.ErrInvalidInput, "delivery agent details are required")
		}
		if err := srv.validator.check(input.DeliveryAgent); err != nil {
			return nil, err
		}
		staged, err := srv.policy.inspectDeliveryAgentUploads(input.ProfilePhoto, input.IdentityDocuments)
		if err != nil {
			return nil, err
		}
		reg.staged = staged
		reg.details = &entity.DeliveryAgentProfile{
			VehicleType:  strings.TrimSpace(input.DeliveryAgent.VehicleType),
			LicensePlate: strings.TrimSpace(input.DeliveryAgent.LicensePlate),
		}
	}

	hash, err := srv.hasher.Hash(input.Password)
	if errors.Is(err, service.ErrPasswordTooLong) {
		return nil, errors.Wrapf(domainerrors.ErrInvalidInput, "password must be at most %d bytes", service.MaxPasswordBytes)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	now := time.Now().UTC()
	reg.account = &entity.Account{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       entity.AccountStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return reg, nil
}

func (srv *accountService) registrationSteps(input *usecase.RegisterInput, reg *registration) []saga.Step {
	accountID := reg.account.ID

	steps := []saga.Step{{
		Name: "create_account",
		Action: func(ctx context.Context) error {
			return srv.accountRepo.Create(ctx, reg.account)
		},
		Compensate: func(ctx context.Context) error {
			return srv.accountRepo.Delete(ctx, accountID)
		},
	}}

	if len(reg.staged) > 0 {
		steps = append(steps, saga.Step{
			Name: "stage_artifacts",
			Action: func(ctx context.Context) error {
				return srv.stageArtifacts(ctx, reg)
			},
			Compensate: func(ctx context.Context) error {
				srv.storage.Remove(ctx, artifactKeys(reg.refs)...)

				return nil
			},
		})
	}

	if agent := input.DeliveryAgent; input.Role == entity.RoleDeliveryAgent && strings.TrimSpace(agent.PartnerName) != "" {
		steps = append(steps, saga.Step{
			Name: "resolve_partner",
			Action: func(ctx context.Context) error {
				return srv.resolvePartner(ctx, agent.PartnerName, reg)
			},
		})
	}

	if reg.details != nil {
		steps = append(steps, saga.Step{
			Name: "create_role_profile",
			Action: func(ctx context.Context) error {
				reg.profile = &entity.RoleProfile{
					AccountID: accountID,
					Role:      reg.account.Role,
					Approval:  entity.ApprovalPending,
					Artifacts: reg.refs,
					Details:   reg.details,
					CreatedAt: reg.account.CreatedAt,
					UpdatedAt: reg.account.CreatedAt,
				}

				return srv.txManager.Execute(ctx, func(tx repository.RepositoryFactory) error {
					return tx.RoleProfileRepo().Create(ctx, reg.profile)
				})
			},
			Compensate: func(ctx context.Context) error {
				return srv.roleProfileRepo.Delete(ctx, accountID)
			},
		})
	}

	steps = append(steps, saga.Step{
		Name: "issue_token",
		Action: func(context.Context) error {
			token, err := srv.tokenService.IssueToken(accountID, reg.account.Role)
			if err != nil {
				return errors.Wrap(err, "failed to issue access token")
			}
			reg.token = token

			return nil
		},
	})

	return steps
}

// stageArtifacts stores every inspected upload. On a partial failure the objects already
// written are removed here, since a failed step is never compensated.
func (srv *accountService) stageArtifacts(ctx context.Context, reg *registration) error {
	perKind := map[entity.ArtifactKind]int{}

	for _, artifact := range reg.staged {
		key := artifact.key(reg.account.ID, perKind[artifact.kind])
		perKind[artifact.kind]++

		stored, err := srv.storage.Store(ctx, artifact.data, service.ArtifactMetadata{
			Key:         key,
			ContentType: artifact.contentType,
		})
		if err != nil {
			srv.storage.Remove(context.WithoutCancel(ctx), artifactKeys(reg.refs)...)
			reg.refs = nil

			return errors.Wrapf(err, "failed to store %s", artifact.kind)
		}

		reg.refs = append(reg.refs, entity.ArtifactRef{
			Key:         stored,
			Kind:        artifact.kind,
			Size:        int64(len(artifact.data)),
			ContentType: artifact.contentType,
		})
	}

	return nil
}

func (srv *accountService) resolvePartner(ctx context.Context, name string, reg *registration) error {
	partner, err := srv.roleProfileRepo.FindApprovedPartnerByName(ctx, name)
	if errors.Is(err, repository.ErrPartnerNotFound) {
		return errors.Wrapf(domainerrors.ErrPartnerNotFound, "partner %q", strings.TrimSpace(name))
	}
	if err != nil {
		return errors.Wrap(err, "failed to resolve partner")
	}

	details, ok := reg.details.(*entity.DeliveryAgentProfile)
	if !ok {
		return errors.New("partner association requires a delivery agent profile")
	}
	partnerID := partner.AccountID
	details.PartnerID = &partnerID

	return nil
}

// Login authenticates an account by email and password.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	input.Email = normalizeEmail(input.Email)
	if err := srv.validator.check(input); err != nil {
		return nil, err
	}

	account, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "login", errors.Wrap(err, "failed to find account"))
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !account.IsActive() {
		return nil, domainerrors.ErrAccountSuspended
	}

	token, err := srv.tokenService.IssueToken(account.ID, account.Role)
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "login", errors.Wrap(err, "failed to issue access token"))
	}

	srv.log(ctx).Info("Account logged in", slog.String("account_id", account.ID.String()))

	return &usecase.LoginOutput{AccessToken: token, Account: account}, nil
}

func artifactKeys(refs []entity.ArtifactRef) []string {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, ref.Key)
	}

	return keys
}
