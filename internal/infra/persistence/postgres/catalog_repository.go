package postgres

import (
	"context"
	"time"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"
	"marketplace/internal/errors"
	"marketplace/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// catalogRepository implements the repository.CatalogRepository interface.
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository is the constructor for catalogRepository.
func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

// FindByID retrieves a catalog item by its unique ID.
func (repo *catalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error) {
	var itemM model.CatalogItemModel

	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&itemM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCatalogItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find catalog item")
	}

	return toCatalogItemDomain(&itemM), nil
}

// DecrementStock is a single conditional UPDATE, so two concurrent checkouts can never
// both take the last unit.
func (repo *catalogRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int64) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CatalogItemModel{}).
		Where("id = ? AND stock IS NOT NULL AND stock >= ?", id, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to decrement stock")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	item, err := repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !item.TracksStock() {
		return nil
	}

	return repository.ErrStockExhausted
}

func toCatalogItemDomain(data *model.CatalogItemModel) *entity.CatalogItem {
	if data == nil {
		return nil
	}

	return &entity.CatalogItem{
		ID:        data.ID,
		PartnerID: data.PartnerID,
		Name:      data.Name,
		Price:     data.Price,
		Stock:     data.Stock,
		UpdatedAt: data.UpdatedAt,
	}
}
