package postgres

import (
	"context"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/errors"
	"marketplace/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderRepository implements the repository.OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its line items.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("order already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	return nil
}

// FindByID retrieves an order with its line items in checkout order.
func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var orderM model.OrderModel

	if err := repo.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return toOrderDomain(&orderM), nil
}

// UpdateStatus writes only the mutable columns of an order.
func (repo *orderRepository) UpdateStatus(ctx context.Context, order *entity.Order) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":            order.Status.String(),
			"assigned_agent_id": order.AssignedAgentID,
			"updated_at":        order.UpdatedAt,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update order status")
	}

	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	lines := make([]entity.OrderLine, 0, len(data.Lines))
	for _, lineM := range data.Lines {
		lines = append(lines, entity.OrderLine{
			CatalogItemID: lineM.CatalogItemID,
			Name:          lineM.Name,
			UnitPrice:     lineM.UnitPrice,
			Quantity:      lineM.Quantity,
		})
	}

	return &entity.Order{
		ID:              data.ID,
		AccountID:       data.AccountID,
		Lines:           lines,
		Subtotal:        data.Subtotal,
		DeliveryFee:     data.DeliveryFee,
		Total:           data.Total,
		Status:          entity.OrderStatus(data.Status),
		AssignedAgentID: data.AssignedAgentID,
		DeliveryAddress: data.DeliveryAddress,
		Phone:           data.Phone,
		PaymentMethod:   entity.PaymentMethod(data.PaymentMethod),
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	if data == nil {
		return nil
	}

	lines := make([]model.OrderLineModel, 0, len(data.Lines))
	for i, line := range data.Lines {
		lines = append(lines, model.OrderLineModel{
			OrderID:       data.ID,
			Position:      i,
			CatalogItemID: line.CatalogItemID,
			Name:          line.Name,
			UnitPrice:     line.UnitPrice,
			Quantity:      line.Quantity,
		})
	}

	return &model.OrderModel{
		ID:              data.ID,
		AccountID:       data.AccountID,
		Subtotal:        data.Subtotal,
		DeliveryFee:     data.DeliveryFee,
		Total:           data.Total,
		Status:          data.Status.String(),
		AssignedAgentID: data.AssignedAgentID,
		DeliveryAddress: data.DeliveryAddress,
		Phone:           data.Phone,
		PaymentMethod:   string(data.PaymentMethod),
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
		Lines:           lines,
	}
}
