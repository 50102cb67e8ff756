package workflow

import (
	"context"
	"fmt"
	"sync"

	"eloan-must/internal/client"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/core/session"
)

// Command is a local change that can be undone
type Command struct {
	Apply  func()
	Revert func()
}

// RunOptimistic applies cmd, then runs remote. If remote fails the change
// is reverted and the error returned.
func RunOptimistic(ctx context.Context, cmd Command, remote func(context.Context) error) error {
	cmd.Apply()
	if err := remote(ctx); err != nil {
		cmd.Revert()
		return err
	}
	return nil
}

// CatalogGateway is the remote side of product and user administration
type CatalogGateway interface {
	AllPlafonds(ctx context.Context, cred *session.Credential) ([]domain.Plafond, error)
	TogglePlafond(ctx context.Context, cred *session.Credential, id uint) (domain.Plafond, error)
	Users(ctx context.Context, cred *session.Credential, search string, page, size int) (domain.Page[domain.User], error)
	ToggleUser(ctx context.Context, cred *session.Credential, id uint) (domain.User, error)
}

var _ CatalogGateway = (*client.Client)(nil)

// Catalog holds the loaded products and users of the admin screens and
// flips their active flags optimistically
type Catalog struct {
	gw     CatalogGateway
	notify Notifier

	mu       sync.Mutex
	products []domain.Plafond
	users    []domain.User
}

// NewCatalog creates a catalog over gw
func NewCatalog(gw CatalogGateway, notifier Notifier) *Catalog {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Catalog{gw: gw, notify: notifier}
}

// LoadProducts fetches every product, active or not
func (c *Catalog) LoadProducts(ctx context.Context, cred *session.Credential) ([]domain.Plafond, error) {
	if err := requireSuperAdmin(cred); err != nil {
		return nil, err
	}
	items, err := c.gw.AllPlafonds(ctx, cred)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.products = items
	c.mu.Unlock()
	return c.Products(), nil
}

// LoadUsers fetches one page of users
func (c *Catalog) LoadUsers(ctx context.Context, cred *session.Credential, search string, page, size int) (domain.Page[domain.User], error) {
	if err := requireSuperAdmin(cred); err != nil {
		return domain.Page[domain.User]{}, err
	}
	p, err := c.gw.Users(ctx, cred, search, page, size)
	if err != nil {
		return p, err
	}
	c.mu.Lock()
	c.users = append([]domain.User(nil), p.Content...)
	c.mu.Unlock()
	return p, nil
}

// Products returns the loaded products
func (c *Catalog) Products() []domain.Plafond {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Plafond(nil), c.products...)
}

// Users returns the loaded users
func (c *Catalog) Users() []domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.User(nil), c.users...)
}

// ToggleProduct flips a product's active flag locally, then on the server.
// The product is looked up by id at every step, so a reload in between
// leaves the new list intact.
func (c *Catalog) ToggleProduct(ctx context.Context, cred *session.Credential, id uint) error {
	if err := requireSuperAdmin(cred); err != nil {
		return err
	}
	wasActive, ok := c.productActive(id)
	if !ok {
		return domain.ErrPlafondNotFound
	}

	flip := func() {
		c.updateProduct(id, func(p *domain.Plafond) { p.Active = !p.Active })
	}
	err := RunOptimistic(ctx, Command{Apply: flip, Revert: flip}, func(ctx context.Context) error {
		updated, err := c.gw.TogglePlafond(ctx, cred, id)
		if err != nil {
			return err
		}
		c.updateProduct(id, func(p *domain.Plafond) { p.Active = updated.Active })
		return nil
	})
	if err != nil {
		c.notify.Notify(Notice{Level: LevelError, Message: "Gagal mengupdate produk: " + client.UserMessage(err)})
		return err
	}
	c.notify.Notify(Notice{Level: LevelSuccess, Message: fmt.Sprintf("Produk berhasil %s!", toggledWord(wasActive))})
	return nil
}

// ToggleUser flips a user's active flag locally, then on the server
func (c *Catalog) ToggleUser(ctx context.Context, cred *session.Credential, id uint) error {
	if err := requireSuperAdmin(cred); err != nil {
		return err
	}
	wasActive, ok := c.userActive(id)
	if !ok {
		return domain.ErrUserNotFound
	}

	flip := func() {
		c.updateUser(id, func(u *domain.User) { u.Active = !u.Active })
	}
	err := RunOptimistic(ctx, Command{Apply: flip, Revert: flip}, func(ctx context.Context) error {
		updated, err := c.gw.ToggleUser(ctx, cred, id)
		if err != nil {
			return err
		}
		c.updateUser(id, func(u *domain.User) { u.Active = updated.Active })
		return nil
	})
	if err != nil {
		c.notify.Notify(Notice{Level: LevelError, Message: "Gagal mengupdate user: " + client.UserMessage(err)})
		return err
	}
	c.notify.Notify(Notice{Level: LevelSuccess, Message: fmt.Sprintf("User berhasil %s!", toggledWord(wasActive))})
	return nil
}

func (c *Catalog) productActive(id uint) (active, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p.Active, true
		}
	}
	return false, false
}

func (c *Catalog) userActive(id uint) (active, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.ID == id {
			return u.Active, true
		}
	}
	return false, false
}

// updateProduct applies fn to the loaded product with id; absent ids are skipped
func (c *Catalog) updateProduct(id uint, fn func(*domain.Plafond)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == id {
			fn(&c.products[i])
			return
		}
	}
}

func (c *Catalog) updateUser(id uint, fn func(*domain.User)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.users {
		if c.users[i].ID == id {
			fn(&c.users[i])
			return
		}
	}
}

func requireSuperAdmin(cred *session.Credential) error {
	if cred.Empty() {
		return ErrSessionExpired
	}
	if !lifecycle.HasRole(cred.Roles, domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	return nil
}

func toggledWord(wasActive bool) string {
	if wasActive {
		return "dinonaktifkan"
	}
	return "diaktifkan"
}
