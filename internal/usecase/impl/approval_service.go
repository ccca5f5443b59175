package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
	"marketplace/internal/usecase"

	"go.uber.org/fx"
)

const maxRejectionReasonLen = 500

type approvalService struct {
	txManager repository.TransactionManager
	publisher service.EventPublisher
	logger    *slog.Logger
}

// ApprovalServiceParams holds dependencies for ApprovalService, injected by Fx.
type ApprovalServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Publisher service.EventPublisher `optional:"true"`
	Logger    *slog.Logger
}

// NewApprovalService creates the admin review workflow for role profiles.
func NewApprovalService(params ApprovalServiceParams) usecase.ApprovalUsecase {
	return &approvalService{
		txManager: params.TxManager,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

func (srv *approvalService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Approve marks the profile approved and the owning account verified.
func (srv *approvalService) Approve(ctx context.Context, input *usecase.ReviewInput) (*entity.RoleProfile, error) {
	return srv.review(ctx, input, entity.ApprovalApproved, "")
}

// Reject marks the profile rejected with an optional reason and clears the account's verified flag.
func (srv *approvalService) Reject(ctx context.Context, input *usecase.ReviewInput) (*entity.RoleProfile, error) {
	reason := strings.TrimSpace(input.Reason)
	if len(reason) > maxRejectionReasonLen {
		return nil, errors.Wrapf(domainerrors.ErrInvalidInput, "reason must be at most %d characters", maxRejectionReasonLen)
	}

	return srv.review(ctx, input, entity.ApprovalRejected, reason)
}

func (srv *approvalService) review(ctx context.Context, input *usecase.ReviewInput, status entity.ApprovalStatus, reason string) (*entity.RoleProfile, error) {
	if !input.Actor.IsAdmin() {
		return nil, errors.Wrap(domainerrors.ErrForbidden, "only admins can review role profiles")
	}

	var reviewed *entity.RoleProfile
	err := srv.txManager.Execute(ctx, func(tx repository.RepositoryFactory) error {
		profiles := tx.RoleProfileRepo()

		if _, err := profiles.FindByAccountID(ctx, input.AccountID); err != nil {
			if errors.Is(err, repository.ErrRoleProfileNotFound) {
				return domainerrors.ErrRoleProfileNotFound
			}

			return errors.Wrap(err, "failed to load role profile")
		}

		if err := profiles.UpdateApproval(ctx, input.AccountID, status, reason); err != nil {
			return errors.Wrap(err, "failed to update approval")
		}

		verified := status == entity.ApprovalApproved
		if err := tx.AccountRepo().SetVerified(ctx, input.AccountID, verified); err != nil {
			return errors.Wrap(err, "failed to update account verification")
		}

		profile, err := profiles.FindByAccountID(ctx, input.AccountID)
		if err != nil {
			return errors.Wrap(err, "failed to reload role profile")
		}
		reviewed = profile

		return nil
	})
	if err != nil {
		return nil, surfaceError(ctx, srv.log(ctx), "review_role_profile", err)
	}

	srv.log(ctx).Info("Role profile reviewed",
		slog.String("account_id", input.AccountID.String()),
		slog.String("approval", string(status)),
		slog.String("reviewer_id", input.Actor.AccountID.String()),
	)

	eventType := service.EventRoleProfileApproved
	if status == entity.ApprovalRejected {
		eventType = service.EventRoleProfileRejected
	}
	publishEvent(ctx, srv.publisher, srv.log(ctx), &service.StateChangeEvent{
		Type:       eventType,
		EntityID:   input.AccountID.String(),
		AccountID:  input.AccountID.String(),
		Attributes: map[string]string{"role": reviewed.Role.String()},
	})

	return reviewed, nil
}
