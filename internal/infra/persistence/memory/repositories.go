package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/errors"

	"github.com/google/uuid"
)

type accountRepository struct{ s *session }

func (r *accountRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	var found entity.Account
	err := r.s.run("account.find", func(d *dataset) error {
		account, ok := d.accounts[id]
		if !ok {
			return repository.ErrAccountNotFound
		}
		found = account

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &found, nil
}

func (r *accountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	var found *entity.Account
	err := r.s.run("account.find", func(d *dataset) error {
		for _, account := range d.accounts {
			if strings.EqualFold(account.Email, email) {
				found = &account

				return nil
			}
		}

		return repository.ErrAccountNotFound
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func (r *accountRepository) ExistsByContact(_ context.Context, email, phone string) (bool, error) {
	var exists bool
	err := r.s.run("account.exists", func(d *dataset) error {
		exists = contactTaken(d, email, phone)

		return nil
	})

	return exists, err
}

func (r *accountRepository) Create(_ context.Context, account *entity.Account) error {
	return r.s.run(OpAccountCreate, func(d *dataset) error {
		if contactTaken(d, account.Email, account.Phone) {
			return domainerrors.ErrAccountAlreadyExists
		}
		if _, ok := d.accounts[account.ID]; ok {
			return domainerrors.ErrAccountAlreadyExists
		}
		d.accounts[account.ID] = *account

		return nil
	})
}

func (r *accountRepository) SetVerified(_ context.Context, id uuid.UUID, verified bool) error {
	return r.s.run(OpAccountSetVerified, func(d *dataset) error {
		account, ok := d.accounts[id]
		if !ok {
			return repository.ErrAccountNotFound
		}
		account.Verified = verified
		account.UpdatedAt = time.Now().UTC()
		d.accounts[id] = account

		return nil
	})
}

func (r *accountRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.run(OpAccountDelete, func(d *dataset) error {
		delete(d.accounts, id)

		return nil
	})
}

func contactTaken(d *dataset, email, phone string) bool {
	for _, account := range d.accounts {
		if strings.EqualFold(account.Email, email) || (phone != "" && account.Phone == phone) {
			return true
		}
	}

	return false
}

type roleProfileRepository struct{ s *session }

func (r *roleProfileRepository) Create(_ context.Context, profile *entity.RoleProfile) error {
	return r.s.run(OpProfileCreate, func(d *dataset) error {
		if _, ok := d.accounts[profile.AccountID]; !ok {
			return errors.Wrap(repository.ErrAccountNotFound, "role profile requires an existing account")
		}
		if _, ok := d.profiles[profile.AccountID]; ok {
			return errors.Wrap(domainerrors.ErrConflict, "role profile already exists")
		}
		d.profiles[profile.AccountID] = cloneProfile(profile)

		return nil
	})
}

func (r *roleProfileRepository) FindByAccountID(_ context.Context, accountID uuid.UUID) (*entity.RoleProfile, error) {
	var found *entity.RoleProfile
	err := r.s.run("profile.find", func(d *dataset) error {
		profile, ok := d.profiles[accountID]
		if !ok {
			return repository.ErrRoleProfileNotFound
		}
		found = cloneProfile(profile)

		return nil
	})

	return found, err
}

func (r *roleProfileRepository) FindApprovedPartnerByName(_ context.Context, name string) (*entity.RoleProfile, error) {
	want := strings.TrimSpace(name)

	var found *entity.RoleProfile
	err := r.s.run("profile.find_partner", func(d *dataset) error {
		var candidates []*entity.RoleProfile
		for _, profile := range d.profiles {
			partner := profile.Partner()
			if partner == nil || profile.Approval != entity.ApprovalApproved {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(partner.BusinessName), want) {
				candidates = append(candidates, profile)
			}
		}
		if len(candidates) == 0 {
			return repository.ErrPartnerNotFound
		}
		// Oldest profile wins, matching the ORDER BY of the SQL driver.
		found = cloneProfile(slices.MinFunc(candidates, func(a, b *entity.RoleProfile) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}))

		return nil
	})

	return found, err
}

func (r *roleProfileRepository) UpdateApproval(_ context.Context, accountID uuid.UUID, status entity.ApprovalStatus, reason string) error {
	return r.s.run(OpProfileUpdate, func(d *dataset) error {
		profile, ok := d.profiles[accountID]
		if !ok {
			return repository.ErrRoleProfileNotFound
		}
		profile.Approval = status
		profile.RejectionReason = reason
		profile.UpdatedAt = time.Now().UTC()

		return nil
	})
}

func (r *roleProfileRepository) Delete(_ context.Context, accountID uuid.UUID) error {
	return r.s.run(OpProfileDelete, func(d *dataset) error {
		delete(d.profiles, accountID)

		return nil
	})
}

type catalogRepository struct{ s *session }

func (r *catalogRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.CatalogItem, error) {
	var found entity.CatalogItem
	err := r.s.run("catalog.find", func(d *dataset) error {
		item, ok := d.catalog[id]
		if !ok {
			return repository.ErrCatalogItemNotFound
		}
		found = cloneItem(item)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &found, nil
}

func (r *catalogRepository) DecrementStock(_ context.Context, id uuid.UUID, qty int64) error {
	return r.s.run(OpCatalogDecrement, func(d *dataset) error {
		item, ok := d.catalog[id]
		if !ok {
			return repository.ErrCatalogItemNotFound
		}
		if !item.TracksStock() {
			return nil
		}
		if *item.Stock < qty {
			return repository.ErrStockExhausted
		}
		*item.Stock -= qty
		item.UpdatedAt = time.Now().UTC()
		d.catalog[id] = item

		return nil
	})
}

type cartRepository struct{ s *session }

func (r *cartRepository) FindByAccountID(_ context.Context, accountID uuid.UUID) (*entity.Cart, error) {
	cart := entity.NewCart(accountID)
	err := r.s.run("cart.find", func(d *dataset) error {
		cart.Lines = slices.Clone(d.carts[accountID])

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cart, nil
}

// LockByAccountID needs no extra locking: sessions are already serialized by the store.
func (r *cartRepository) LockByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Cart, error) {
	return r.FindByAccountID(ctx, accountID)
}

func (r *cartRepository) Save(_ context.Context, cart *entity.Cart) error {
	return r.s.run(OpCartSave, func(d *dataset) error {
		if cart.IsEmpty() {
			delete(d.carts, cart.AccountID)

			return nil
		}
		d.carts[cart.AccountID] = slices.Clone(cart.Lines)

		return nil
	})
}

func (r *cartRepository) Clear(_ context.Context, accountID uuid.UUID) error {
	return r.s.run(OpCartClear, func(d *dataset) error {
		delete(d.carts, accountID)

		return nil
	})
}

type orderRepository struct{ s *session }

func (r *orderRepository) Create(_ context.Context, order *entity.Order) error {
	return r.s.run(OpOrderCreate, func(d *dataset) error {
		if _, ok := d.orders[order.ID]; ok {
			return errors.Wrap(domainerrors.ErrConflict, "order already exists")
		}
		d.orders[order.ID] = cloneOrder(order)

		return nil
	})
}

func (r *orderRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	var found *entity.Order
	err := r.s.run("order.find", func(d *dataset) error {
		order, ok := d.orders[id]
		if !ok {
			return repository.ErrOrderNotFound
		}
		found = cloneOrder(order)

		return nil
	})

	return found, err
}

func (r *orderRepository) UpdateStatus(_ context.Context, order *entity.Order) error {
	return r.s.run(OpOrderUpdate, func(d *dataset) error {
		stored, ok := d.orders[order.ID]
		if !ok {
			return repository.ErrOrderNotFound
		}
		stored.Status = order.Status
		stored.UpdatedAt = order.UpdatedAt
		if order.AssignedAgentID != nil {
			id := *order.AssignedAgentID
			stored.AssignedAgentID = &id
		} else {
			stored.AssignedAgentID = nil
		}

		return nil
	})
}
