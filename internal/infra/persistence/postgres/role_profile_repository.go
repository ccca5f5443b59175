package postgres

import (
	"context"
	"strings"
	"time"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/errors"
	"marketplace/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// roleProfileRepository implements the repository.RoleProfileRepository interface.
// Role-specific details live in their own tables and are loaded as has-one associations.
type roleProfileRepository struct {
	db *gorm.DB
}

// NewRoleProfileRepository is the constructor for roleProfileRepository.
func NewRoleProfileRepository(db *gorm.DB) repository.RoleProfileRepository {
	return &roleProfileRepository{db: db}
}

// Create persists a new role profile together with its details row.
func (repo *roleProfileRepository) Create(ctx context.Context, profile *entity.RoleProfile) error {
	profileM := fromRoleProfileDomain(profile)

	if err := repo.db.WithContext(ctx).Create(profileM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("role profile already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrAccountNotFound.WrapMessage("role profile owner does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create role profile")
	}

	profile.CreatedAt = profileM.CreatedAt
	profile.UpdatedAt = profileM.UpdatedAt

	return nil
}

// FindByAccountID retrieves the profile owned by the account.
func (repo *roleProfileRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.RoleProfile, error) {
	var profileM model.RoleProfileModel

	if err := repo.db.WithContext(ctx).
		Preload("Partner").
		Preload("DeliveryAgent").
		Where("account_id = ?", accountID).
		First(&profileM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoleProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find role profile")
	}

	return toRoleProfileDomain(&profileM), nil
}

// FindApprovedPartnerByName returns the oldest approved partner whose business name matches,
// ignoring case and surrounding whitespace.
func (repo *roleProfileRepository) FindApprovedPartnerByName(ctx context.Context, name string) (*entity.RoleProfile, error) {
	var profileM model.RoleProfileModel

	if err := repo.db.WithContext(ctx).
		Joins("JOIN partner_profiles ON partner_profiles.account_id = role_profiles.account_id").
		Preload("Partner").
		Where("role_profiles.role = ? AND role_profiles.approval = ?", entity.RolePartner, entity.ApprovalApproved).
		Where("LOWER(TRIM(partner_profiles.business_name)) = LOWER(?)", strings.TrimSpace(name)).
		Order("role_profiles.created_at ASC").
		First(&profileM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPartnerNotFound
		}

		return nil, errors.Wrap(err, "failed to find partner by name")
	}

	return toRoleProfileDomain(&profileM), nil
}

// UpdateApproval sets the approval status and rejection reason of a profile.
func (repo *roleProfileRepository) UpdateApproval(ctx context.Context, accountID uuid.UUID, status entity.ApprovalStatus, reason string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RoleProfileModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"approval":         string(status),
			"rejection_reason": reason,
			"updated_at":       time.Now().UTC(),
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update approval")
	}

	if result.RowsAffected == 0 {
		return repository.ErrRoleProfileNotFound
	}

	return nil
}

// Delete removes the profile and its details. Deleting a missing profile is not an error.
func (repo *roleProfileRepository) Delete(ctx context.Context, accountID uuid.UUID) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, details := range []any{&model.PartnerProfileModel{}, &model.DeliveryAgentProfileModel{}, &model.RoleProfileModel{}} {
			if err := tx.Where("account_id = ?", accountID).Delete(details).Error; err != nil {
				return err
			}
		}

		return nil
	})

	return errors.Wrap(err, "failed to delete role profile")
}

// --- Mapper Functions ---

func toRoleProfileDomain(data *model.RoleProfileModel) *entity.RoleProfile {
	if data == nil {
		return nil
	}

	profile := &entity.RoleProfile{
		AccountID:       data.AccountID,
		Role:            entity.Role(data.Role),
		Approval:        entity.ApprovalStatus(data.Approval),
		RejectionReason: data.RejectionReason,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}

	for _, ref := range data.Artifacts {
		profile.Artifacts = append(profile.Artifacts, entity.ArtifactRef{
			Key:         ref.Key,
			Kind:        entity.ArtifactKind(ref.Kind),
			Size:        ref.Size,
			ContentType: ref.ContentType,
		})
	}

	switch {
	case data.Partner != nil:
		profile.Details = &entity.PartnerProfile{
			BusinessName: data.Partner.BusinessName,
			Description:  data.Partner.Description,
			Category:     data.Partner.Category,
			BankAccount:  data.Partner.BankAccount,
		}
	case data.DeliveryAgent != nil:
		profile.Details = &entity.DeliveryAgentProfile{
			VehicleType:  data.DeliveryAgent.VehicleType,
			LicensePlate: data.DeliveryAgent.LicensePlate,
			PartnerID:    data.DeliveryAgent.PartnerID,
		}
	}

	return profile
}

func fromRoleProfileDomain(data *entity.RoleProfile) *model.RoleProfileModel {
	if data == nil {
		return nil
	}

	refs := make([]model.ArtifactRefModel, 0, len(data.Artifacts))
	for _, ref := range data.Artifacts {
		refs = append(refs, model.ArtifactRefModel{
			Key:         ref.Key,
			Kind:        string(ref.Kind),
			Size:        ref.Size,
			ContentType: ref.ContentType,
		})
	}

	profileM := &model.RoleProfileModel{
		AccountID:       data.AccountID,
		Role:            data.Role.String(),
		Approval:        string(data.Approval),
		RejectionReason: data.RejectionReason,
		Artifacts:       datatypes.NewJSONSlice(refs),
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}

	switch details := data.Details.(type) {
	case *entity.PartnerProfile:
		profileM.Partner = &model.PartnerProfileModel{
			AccountID:    data.AccountID,
			BusinessName: details.BusinessName,
			Description:  details.Description,
			Category:     details.Category,
			BankAccount:  details.BankAccount,
		}
	case *entity.DeliveryAgentProfile:
		profileM.DeliveryAgent = &model.DeliveryAgentProfileModel{
			AccountID:    data.AccountID,
			VehicleType:  details.VehicleType,
			LicensePlate: details.LicensePlate,
			PartnerID:    details.PartnerID,
		}
	}

	return profileM
}
