package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"eloan-must/internal/adapters/persistence/cache"
	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/core/domain"

	"gorm.io/gorm"
)

// ---------------------------------------------------------------- loans

type fakeLoanRepo struct {
	mu        sync.Mutex
	loans     map[uint]*models.LoanApplication
	histories []*models.LoanHistory
	// steal, when set, changes the stored status right before Transition
	steal domain.LoanStatus
}

func newFakeLoanRepo(loans ...*models.LoanApplication) *fakeLoanRepo {
	r := &fakeLoanRepo{loans: make(map[uint]*models.LoanApplication)}
	for _, l := range loans {
		r.loans[l.ID] = l
	}
	return r
}

func (r *fakeLoanRepo) GetByID(_ context.Context, id uint) (*models.LoanApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLoanRepo) List(_ context.Context, f repositories.LoanFilter) ([]*models.LoanApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LoanApplication
	for _, l := range r.loans {
		if len(f.Statuses) == 0 || containsStatus(f.Statuses, l.Status) {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLoanRepo) Transition(_ context.Context, loan *models.LoanApplication, from domain.LoanStatus, h *models.LoanHistory) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.loans[loan.ID]
	if r.steal != "" {
		stored.Status = r.steal
	}
	if stored.Status != from {
		return false, nil
	}
	cp := *loan
	r.loans[loan.ID] = &cp
	r.histories = append(r.histories, h)
	return true, nil
}

func (r *fakeLoanRepo) History(_ context.Context, loanID uint) ([]*models.LoanHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LoanHistory
	for _, h := range r.histories {
		if h.LoanID == loanID {
			out = append(out, h)
		}
	}
	return out, nil
}

func containsStatus(list []domain.LoanStatus, s domain.LoanStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// -------------------------------------------------------- notifications

type fakeNotificationRepo struct {
	mu   sync.Mutex
	rows []*models.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uint(len(r.rows) + 1)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uint, unreadOnly bool) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.rows {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountByUser(_ context.Context, userID uint) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, unread int64
	for _, n := range r.rows {
		if n.UserID == userID {
			total++
			if !n.Read {
				unread++
			}
		}
	}
	return total, unread, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, userID, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, userID, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.rows {
		if n.ID == id && n.UserID == userID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) DeleteReadBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.Notification
	var n int64
	for _, row := range r.rows {
		if row.Read && row.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return n, nil
}

// ------------------------------------------------------------- plafonds

type fakePlafondRepo struct {
	rows   map[uint]*models.Plafond
	nextID uint
	lists  int
}

func newFakePlafondRepo(rows ...*models.Plafond) *fakePlafondRepo {
	r := &fakePlafondRepo{rows: make(map[uint]*models.Plafond)}
	for _, p := range rows {
		r.rows[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *fakePlafondRepo) Create(_ context.Context, p *models.Plafond) error {
	r.nextID++
	p.ID = r.nextID
	r.rows[p.ID] = p
	return nil
}

func (r *fakePlafondRepo) Update(_ context.Context, p *models.Plafond) error {
	r.rows[p.ID] = p
	return nil
}

func (r *fakePlafondRepo) GetByID(_ context.Context, id uint) (*models.Plafond, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlafondRepo) ExistsByCode(_ context.Context, code string, excludeID uint) (bool, error) {
	for _, p := range r.rows {
		if p.Code == code && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePlafondRepo) ListActive(ctx context.Context) ([]*models.Plafond, error) {
	all, _ := r.ListAll(ctx)
	var out []*models.Plafond
	for _, p := range all {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlafondRepo) ListAll(context.Context) ([]*models.Plafond, error) {
	r.lists++
	var out []*models.Plafond
	for _, p := range r.rows {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MinAmount != out[j].MinAmount {
			return out[i].MinAmount < out[j].MinAmount
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakePlafondRepo) SetActive(_ context.Context, id uint, active bool) error {
	if p, ok := r.rows[id]; ok {
		p.Active = active
	}
	return nil
}

func (r *fakePlafondRepo) Delete(_ context.Context, id uint) error {
	delete(r.rows, id)
	return nil
}

type memoryPlafondCache struct {
	items       []domain.Plafond
	set         bool
	invalidated int
}

func (c *memoryPlafondCache) GetActive(context.Context) ([]domain.Plafond, error) {
	if !c.set {
		return nil, cache.ErrMiss
	}
	return c.items, nil
}

func (c *memoryPlafondCache) SetActive(_ context.Context, p []domain.Plafond) error {
	c.items, c.set = p, true
	return nil
}

func (c *memoryPlafondCache) Invalidate(context.Context) error {
	c.items, c.set = nil, false
	c.invalidated++
	return nil
}

// ---------------------------------------------------------------- users

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uint, active bool) error {
	r.users[id].Active = active
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	r.users[id].Password = hash
	return nil
}

func (r *fakeUserRepo) ReplaceRoles(_ context.Context, u *models.User, roles []models.Role) error {
	r.users[u.ID].Roles = roles
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ string, offset, limit int) ([]*models.User, int64, error) {
	var all []*models.User
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type fakeRoleRepo struct {
	roles []models.Role
	perms []models.Permission
}

func (r *fakeRoleRepo) List(context.Context) ([]*models.Role, error) {
	var out []*models.Role
	for i := range r.roles {
		out = append(out, &r.roles[i])
	}
	return out, nil
}

func (r *fakeRoleRepo) GetByID(_ context.Context, id uint) (*models.Role, error) {
	for i := range r.roles {
		if r.roles[i].ID == id {
			return &r.roles[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRoleRepo) GetByIDs(_ context.Context, ids []uint) ([]models.Role, error) {
	var out []models.Role
	for _, role := range r.roles {
		for _, id := range ids {
			if role.ID == id {
				out = append(out, role)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	for i := range r.roles {
		if r.roles[i].Name == name {
			return &r.roles[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRoleRepo) ReplacePermissions(_ context.Context, role *models.Role, perms []models.Permission) error {
	role.Permissions = perms
	return nil
}

func (r *fakeRoleRepo) ListPermissions(context.Context) ([]*models.Permission, error) {
	var out []*models.Permission
	for i := range r.perms {
		out = append(out, &r.perms[i])
	}
	return out, nil
}

func (r *fakeRoleRepo) GetPermissionsByIDs(_ context.Context, ids []uint) ([]models.Permission, error) {
	var out []models.Permission
	for _, p := range r.perms {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// --------------------------------------------------------------- tokens

type fakeRefreshRepo struct {
	rows []*models.RefreshToken
}

func (r *fakeRefreshRepo) Create(_ context.Context, t *models.RefreshToken) error {
	t.ID = uint(len(r.rows) + 1)
	r.rows = append(r.rows, t)
	return nil
}

func (r *fakeRefreshRepo) GetByTokenHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	for _, t := range r.rows {
		if t.TokenHash == hash && t.RevokedAt == nil {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshRepo) revoke(match func(*models.RefreshToken) bool) {
	now := time.Now()
	for _, t := range r.rows {
		if match(t) {
			t.RevokedAt = &now
		}
	}
}

func (r *fakeRefreshRepo) Revoke(_ context.Context, id uint) error {
	r.revoke(func(t *models.RefreshToken) bool { return t.ID == id })
	return nil
}

func (r *fakeRefreshRepo) RevokeByTokenHash(_ context.Context, hash string) error {
	r.revoke(func(t *models.RefreshToken) bool { return t.TokenHash == hash })
	return nil
}

func (r *fakeRefreshRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	r.revoke(func(t *models.RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (r *fakeRefreshRepo) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func (r *fakeRefreshRepo) live(userID uint) int {
	n := 0
	for _, t := range r.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fakeResetRepo struct {
	rows []*models.PasswordReset
}

func (r *fakeResetRepo) Create(_ context.Context, p *models.PasswordReset) error {
	p.ID = uint(len(r.rows) + 1)
	r.rows = append(r.rows, p)
	return nil
}

func (r *fakeResetRepo) GetByTokenHash(_ context.Context, hash string) (*models.PasswordReset, error) {
	for _, p := range r.rows {
		if p.TokenHash == hash {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id uint) error {
	now := time.Now()
	for _, p := range r.rows {
		if p.ID == id {
			p.UsedAt = &now
		}
	}
	return nil
}

func (r *fakeResetRepo) DeleteExpired(context.Context) (int64, error) { return 0, nil }
