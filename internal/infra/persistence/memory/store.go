// Package memory is an in-process persistence driver. Units of work are serialized
// by a single mutex and applied by swapping in a cloned dataset on commit.
package memory

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"

	"github.com/google/uuid"
)

// Operation names accepted by FailNext.
const (
	OpAccountCreate      = "account.create"
	OpAccountDelete      = "account.delete"
	OpAccountSetVerified = "account.set_verified"
	OpProfileCreate      = "profile.create"
	OpProfileDelete      = "profile.delete"
	OpProfileUpdate      = "profile.update_approval"
	OpCatalogDecrement   = "catalog.decrement"
	OpCartSave           = "cart.save"
	OpCartClear          = "cart.clear"
	OpOrderCreate        = "order.create"
	OpOrderUpdate        = "order.update_status"
)

type dataset struct {
	accounts map[uuid.UUID]entity.Account
	profiles map[uuid.UUID]*entity.RoleProfile
	catalog  map[uuid.UUID]entity.CatalogItem
	carts    map[uuid.UUID][]entity.CartLine
	orders   map[uuid.UUID]*entity.Order
}

func newDataset() *dataset {
	return &dataset{
		accounts: map[uuid.UUID]entity.Account{},
		profiles: map[uuid.UUID]*entity.RoleProfile{},
		catalog:  map[uuid.UUID]entity.CatalogItem{},
		carts:    map[uuid.UUID][]entity.CartLine{},
		orders:   map[uuid.UUID]*entity.Order{},
	}
}

func (d *dataset) clone() *dataset {
	out := &dataset{
		accounts: maps.Clone(d.accounts),
		profiles: make(map[uuid.UUID]*entity.RoleProfile, len(d.profiles)),
		catalog:  make(map[uuid.UUID]entity.CatalogItem, len(d.catalog)),
		carts:    make(map[uuid.UUID][]entity.CartLine, len(d.carts)),
		orders:   make(map[uuid.UUID]*entity.Order, len(d.orders)),
	}
	for id, p := range d.profiles {
		out.profiles[id] = cloneProfile(p)
	}
	for id, item := range d.catalog {
		out.catalog[id] = cloneItem(item)
	}
	for id, lines := range d.carts {
		out.carts[id] = slices.Clone(lines)
	}
	for id, o := range d.orders {
		out.orders[id] = cloneOrder(o)
	}

	return out
}

// Store is the shared in-memory state behind every memory repository.
type Store struct {
	mu     sync.Mutex
	data   *dataset
	faults map[string][]error
	logger *slog.Logger
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		data:   newDataset(),
		faults: map[string][]error{},
		logger: logger,
	}
}

// FailNext makes the next call of op fail with err. Calls queue up per operation;
// a nil err lets that call through.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults[op] = append(s.faults[op], err)
}

// takeFault must be called with mu held.
func (s *Store) takeFault(op string) error {
	queue := s.faults[op]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	s.faults[op] = queue[1:]

	return err
}

// Execute runs fn against a private copy of the dataset and publishes the copy
// only when fn succeeds.
func (s *Store) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &session{store: s, tx: s.data.clone()}
	if err := fn(tx); err != nil {
		s.logger.Debug("Memory transaction rolled back", slog.Any("error", err))

		return err
	}
	s.data = tx.tx

	return nil
}

// Repositories returns repositories that operate on the committed dataset, one call at a time.
func (s *Store) Repositories() repository.RepositoryFactory {
	return &session{store: s}
}

// SeedAccount inserts an account without uniqueness checks.
func (s *Store) SeedAccount(account *entity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.accounts[account.ID] = *account
}

// SeedRoleProfile inserts a role profile.
func (s *Store) SeedRoleProfile(profile *entity.RoleProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.profiles[profile.AccountID] = cloneProfile(profile)
}

// SeedCatalogItem inserts or replaces a catalog item.
func (s *Store) SeedCatalogItem(item *entity.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.catalog[item.ID] = cloneItem(*item)
}

// RemoveCatalogItem deletes a catalog item, as a partner withdrawing it would.
func (s *Store) RemoveCatalogItem(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data.catalog, id)
}

// Counts reports how many records of each kind are committed.
type Counts struct {
	Accounts int
	Profiles int
	Orders   int
}

// Counts returns the committed record counts.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Counts{
		Accounts: len(s.data.accounts),
		Profiles: len(s.data.profiles),
		Orders:   len(s.data.orders),
	}
}

// session binds repositories either to a transaction's private dataset (tx != nil)
// or to the committed dataset under the store lock.
type session struct {
	store *Store
	tx    *dataset
}

func (s *session) run(op string, fn func(d *dataset) error) error {
	if s.tx != nil {
		if err := s.store.takeFault(op); err != nil {
			return err
		}

		return fn(s.tx)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if err := s.store.takeFault(op); err != nil {
		return err
	}

	return fn(s.store.data)
}

func (s *session) AccountRepo() repository.AccountRepository { return &accountRepository{s} }
func (s *session) RoleProfileRepo() repository.RoleProfileRepository {
	return &roleProfileRepository{s}
}
func (s *session) CatalogRepo() repository.CatalogRepository { return &catalogRepository{s} }
func (s *session) CartRepo() repository.CartRepository       { return &cartRepository{s} }
func (s *session) OrderRepo() repository.OrderRepository     { return &orderRepository{s} }

func cloneProfile(p *entity.RoleProfile) *entity.RoleProfile {
	out := *p
	out.Artifacts = slices.Clone(p.Artifacts)
	switch d := p.Details.(type) {
	case *entity.PartnerProfile:
		details := *d
		out.Details = &details
	case *entity.DeliveryAgentProfile:
		details := *d
		if d.PartnerID != nil {
			id := *d.PartnerID
			details.PartnerID = &id
		}
		out.Details = &details
	}

	return &out
}

func cloneItem(item entity.CatalogItem) entity.CatalogItem {
	if item.Stock != nil {
		stock := *item.Stock
		item.Stock = &stock
	}

	return item
}

func cloneOrder(o *entity.Order) *entity.Order {
	out := *o
	out.Lines = slices.Clone(o.Lines)
	if o.AssignedAgentID != nil {
		id := *o.AssignedAgentID
		out.AssignedAgentID = &id
	}

	return &out
}
