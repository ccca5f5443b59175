package postgres

import (
	"context"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"
	"marketplace/internal/errors"
	"marketplace/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cartRepository implements the repository.CartRepository interface.
// A cart is the ordered set of cart_lines rows of one account.
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository is the constructor for cartRepository.
func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// FindByAccountID returns the account's cart, empty when it has no lines.
func (repo *cartRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Cart, error) {
	return repo.find(cartLinesQuery(repo.db.WithContext(ctx), accountID), accountID)
}

// LockByAccountID reads the cart lines with SELECT ... FOR UPDATE. A second checkout of the
// same cart blocks on the row locks and, once the first commits, sees the lines deleted.
func (repo *cartRepository) LockByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Cart, error) {
	return repo.find(lockedCartLinesQuery(repo.db.WithContext(ctx), accountID), accountID)
}

func cartLinesQuery(db *gorm.DB, accountID uuid.UUID) *gorm.DB {
	return db.Model(&model.CartLineModel{}).
		Where("account_id = ?", accountID).
		Order("position ASC")
}

func lockedCartLinesQuery(db *gorm.DB, accountID uuid.UUID) *gorm.DB {
	return cartLinesQuery(db, accountID).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

func (repo *cartRepository) find(query *gorm.DB, accountID uuid.UUID) (*entity.Cart, error) {
	var lineModels []model.CartLineModel
	if err := query.Find(&lineModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find cart lines")
	}

	cart := entity.NewCart(accountID)
	for _, lineM := range lineModels {
		cart.Lines = append(cart.Lines, entity.CartLine{
			CatalogItemID: lineM.CatalogItemID,
			Name:          lineM.Name,
			Quantity:      lineM.Quantity,
			UnitPrice:     lineM.UnitPrice,
		})
	}

	return cart, nil
}

// Save replaces the stored lines of the cart.
func (repo *cartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", cart.AccountID).Delete(&model.CartLineModel{}).Error; err != nil {
			return err
		}
		if cart.IsEmpty() {
			return nil
		}

		lineModels := make([]model.CartLineModel, 0, len(cart.Lines))
		for i, line := range cart.Lines {
			lineModels = append(lineModels, model.CartLineModel{
				AccountID:     cart.AccountID,
				CatalogItemID: line.CatalogItemID,
				Position:      i,
				Name:          line.Name,
				Quantity:      line.Quantity,
				UnitPrice:     line.UnitPrice,
			})
		}

		return tx.Create(&lineModels).Error
	})

	return errors.Wrap(err, "failed to save cart")
}

// Clear removes every line from the account's cart.
func (repo *cartRepository) Clear(ctx context.Context, accountID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&model.CartLineModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear cart")
	}

	return nil
}
