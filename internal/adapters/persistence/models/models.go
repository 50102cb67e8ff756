package models

import (
	"sort"
	"time"

	"eloan-must/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FirstName string         `gorm:"size:100" json:"firstName"`
	LastName  string         `gorm:"size:100" json:"lastName"`
	Active    bool           `gorm:"not null" json:"active"`
	Roles     []Role         `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// RoleNames returns the names of the user's roles
func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

// PermissionNames returns the distinct permissions granted by all roles
func (u *User) PermissionNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if !seen[p.Name] {
				seen[p.Name] = true
				out = append(out, p.Name)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (u *User) ToResponse() domain.User {
	roles := make([]domain.RoleInfo, 0, len(u.Roles))
	for i := range u.Roles {
		roles = append(roles, u.Roles[i].ToResponse())
	}
	return domain.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Roles:       roles,
		Permissions: u.PermissionNames(),
		Active:      u.Active,
	}
}

// Role represents roles table
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string       `gorm:"size:255" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Role) TableName() string {
	return "roles"
}

func (r *Role) ToResponse() domain.RoleInfo {
	perms := make([]domain.Permission, 0, len(r.Permissions))
	for i := range r.Permissions {
		perms = append(perms, r.Permissions[i].ToResponse())
	}
	return domain.RoleInfo{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
	}
}

// Permission represents permissions table
type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Permission) TableName() string {
	return "permissions"
}

func (p *Permission) ToResponse() domain.Permission {
	return domain.Permission{ID: p.ID, Name: p.Name, Description: p.Description}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	RevokedAt *time.Time `gorm:"index" json:"revokedAt"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// PasswordReset represents password_resets table
type PasswordReset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	TokenHash string     `gorm:"size:255;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

// Usable reports whether the reset token can still be redeemed
func (p *PasswordReset) Usable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt)
}

// ============================================================
// Loan Tables
// ============================================================

// Customer is the customer profile written by the mobile app (read only here)
type Customer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"userId"`
	FullName      string    `gorm:"size:150;not null" json:"fullName"`
	Email         string    `gorm:"size:100" json:"email"`
	Phone         string    `gorm:"size:20" json:"phone"`
	NIK           string    `gorm:"column:nik;size:16;uniqueIndex" json:"nik"`
	Address       string    `gorm:"type:text" json:"address"`
	Occupation    string    `gorm:"size:100" json:"occupation"`
	MonthlyIncome float64   `gorm:"type:decimal(15,2)" json:"monthlyIncome"`
	ProfilePhoto  string    `gorm:"size:255" json:"profilePhoto"`
	KtpPhoto      string    `gorm:"size:255" json:"ktpPhoto"`
	SelfiePhoto   string    `gorm:"size:255" json:"selfiePhoto"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:            c.ID,
		UserID:        c.UserID,
		FullName:      c.FullName,
		Email:         c.Email,
		Phone:         c.Phone,
		NIK:           c.NIK,
		Address:       c.Address,
		Occupation:    c.Occupation,
		MonthlyIncome: c.MonthlyIncome,
		ProfilePhoto:  c.ProfilePhoto,
		KtpPhoto:      c.KtpPhoto,
		SelfiePhoto:   c.SelfiePhoto,
	}
}

// Plafond is a lending product tier
type Plafond struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Code         string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	MinAmount    float64        `gorm:"type:decimal(15,2);not null" json:"minAmount"`
	MaxAmount    float64        `gorm:"type:decimal(15,2);not null" json:"maxAmount"`
	MinTenor     int            `gorm:"not null" json:"minTenor"`
	MaxTenor     int            `gorm:"not null" json:"maxTenor"`
	InterestRate float64        `gorm:"type:decimal(5,2);not null" json:"interestRate"`
	AdminFee     float64        `gorm:"type:decimal(15,2);default:0" json:"adminFee"`
	Active       bool           `gorm:"not null;index" json:"active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Plafond) TableName() string {
	return "plafonds"
}

func (p *Plafond) ToDomain() domain.Plafond {
	return domain.Plafond{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		MinAmount:    p.MinAmount,
		MaxAmount:    p.MaxAmount,
		MinTenor:     p.MinTenor,
		MaxTenor:     p.MaxTenor,
		InterestRate: p.InterestRate,
		AdminFee:     p.AdminFee,
		Active:       p.Active,
	}
}

// PlafondFromDomain builds a row from the API shape
func PlafondFromDomain(p domain.Plafond) *Plafond {
	return &Plafond{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		MinAmount:    p.MinAmount,
		MaxAmount:    p.MaxAmount,
		MinTenor:     p.MinTenor,
		MaxTenor:     p.MaxTenor,
		InterestRate: p.InterestRate,
		AdminFee:     p.AdminFee,
		Active:       p.Active,
	}
}

// LoanApplication represents loan_applications table
type LoanApplication struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	ApplicationNumber  string            `gorm:"size:30;uniqueIndex;not null" json:"applicationNumber"`
	CustomerID         uint              `gorm:"index;not null" json:"customerId"`
	PlafondID          uint              `gorm:"index;not null" json:"plafondId"`
	Amount             float64           `gorm:"type:decimal(15,2);not null" json:"amount"`
	Tenor              int               `gorm:"not null" json:"tenor"`
	InterestRate       float64           `gorm:"type:decimal(5,2);not null" json:"interestRate"`
	MonthlyInstallment float64           `gorm:"type:decimal(15,2)" json:"monthlyInstallment"`
	TotalPayment       float64           `gorm:"type:decimal(15,2)" json:"totalPayment"`
	Purpose            string            `gorm:"type:text" json:"purpose"`
	Status             domain.LoanStatus `gorm:"size:20;not null;index" json:"status"`

	ReviewedBy  string     `gorm:"size:50" json:"reviewedBy"`
	ReviewedAt  *time.Time `json:"reviewedAt"`
	ReviewNotes string     `gorm:"type:text" json:"reviewNotes"`

	ApprovedBy      string     `gorm:"size:50" json:"approvedBy"`
	ApprovedAt      *time.Time `json:"approvedAt"`
	ApprovalNotes   string     `gorm:"type:text" json:"approvalNotes"`
	RejectionReason string     `gorm:"type:text" json:"rejectionReason"`

	DisbursedBy        string     `gorm:"size:50" json:"disbursedBy"`
	DisbursedAt        *time.Time `json:"disbursedAt"`
	DisbursementAmount *float64   `gorm:"type:decimal(15,2)" json:"disbursementAmount"`
	DisbursementNotes  string     `gorm:"type:text" json:"disbursementNotes"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Plafond  *Plafond  `gorm:"foreignKey:PlafondID" json:"plafond,omitempty"`
}

func (LoanApplication) TableName() string {
	return "loan_applications"
}

func (l *LoanApplication) ToDomain() domain.LoanApplication {
	updated := l.UpdatedAt
	out := domain.LoanApplication{
		ID:                 l.ID,
		ApplicationNumber:  l.ApplicationNumber,
		Amount:             l.Amount,
		Tenor:              l.Tenor,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: l.MonthlyInstallment,
		TotalPayment:       l.TotalPayment,
		Purpose:            l.Purpose,
		Status:             l.Status,
		ReviewedBy:         l.ReviewedBy,
		ReviewedAt:         l.ReviewedAt,
		ReviewNotes:        l.ReviewNotes,
		ApprovedBy:         l.ApprovedBy,
		ApprovedAt:         l.ApprovedAt,
		ApprovalNotes:      l.ApprovalNotes,
		RejectionReason:    l.RejectionReason,
		DisbursedBy:        l.DisbursedBy,
		DisbursedAt:        l.DisbursedAt,
		DisbursementAmount: l.DisbursementAmount,
		DisbursementNotes:  l.DisbursementNotes,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          &updated,
	}
	if l.Customer != nil {
		out.Customer = l.Customer.ToDomain()
	}
	if l.Plafond != nil {
		p := l.Plafond.ToDomain()
		out.Plafond = &p
	}
	return out
}

// LoanHistory records every status change of a loan
type LoanHistory struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	LoanID      uint              `gorm:"index;not null" json:"loanId"`
	Action      string            `gorm:"size:30;not null" json:"action"`
	FromStatus  domain.LoanStatus `gorm:"size:20;not null" json:"fromStatus"`
	ToStatus    domain.LoanStatus `gorm:"size:20;not null" json:"toStatus"`
	PerformedBy string            `gorm:"size:50;not null" json:"performedBy"`
	Note        string            `gorm:"type:text" json:"note"`
	IPAddress   string            `gorm:"size:50" json:"ipAddress"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"createdAt"`
}

func (LoanHistory) TableName() string {
	return "loan_histories"
}

// ============================================================
// Notifications
// ============================================================

// Notification represents notifications table
type Notification struct {
	ID        uint                    `gorm:"primaryKey" json:"id"`
	UserID    uint                    `gorm:"index;not null" json:"userId"`
	Title     string                  `gorm:"size:150;not null" json:"title"`
	Message   string                  `gorm:"type:text" json:"message"`
	Type      domain.NotificationType `gorm:"size:30;not null" json:"type"`
	Read      bool                    `gorm:"column:is_read;not null;index" json:"read"`
	Data      string                  `gorm:"type:text" json:"data"`
	CreatedAt time.Time               `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) ToDomain() domain.Notification {
	return domain.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Permission{},
		&Role{},
		&User{},
		&RefreshToken{},
		&PasswordReset{},
		&Customer{},
		&Plafond{},
		&LoanApplication{},
		&LoanHistory{},
		&Notification{},
	)
}
