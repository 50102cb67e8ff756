package config

import (
	"fmt"
	"log"
	"time"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/simulation"
	"eloan-must/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

var seedPermissions = []models.Permission{
	{Name: "LOAN_VIEW", Description: "Lihat pengajuan pinjaman"},
	{Name: "LOAN_REVIEW", Description: "Review pengajuan pinjaman"},
	{Name: "LOAN_APPROVE", Description: "Setujui atau tolak pinjaman"},
	{Name: "LOAN_DISBURSE", Description: "Cairkan dana pinjaman"},
	{Name: "PLAFOND_MANAGE", Description: "Kelola produk plafond"},
	{Name: "USER_MANAGE", Description: "Kelola pengguna"},
	{Name: "ROLE_MANAGE", Description: "Kelola role dan permission"},
	{Name: "DASHBOARD_VIEW", Description: "Lihat dashboard"},
	{Name: "NOTIFICATION_VIEW", Description: "Lihat notifikasi"},
}

// role name -> permission names; SUPER_ADMIN gets every permission
var seedRolePermissions = map[domain.Role][]string{
	domain.RoleMarketing:     {"LOAN_VIEW", "LOAN_REVIEW", "DASHBOARD_VIEW", "NOTIFICATION_VIEW"},
	domain.RoleBranchManager: {"LOAN_VIEW", "LOAN_APPROVE", "DASHBOARD_VIEW", "NOTIFICATION_VIEW"},
	domain.RoleBackOffice:    {"LOAN_VIEW", "LOAN_DISBURSE", "DASHBOARD_VIEW", "NOTIFICATION_VIEW"},
	domain.RoleCustomer:      {"NOTIFICATION_VIEW"},
}

var seedPlafonds = []models.Plafond{
	{Code: "SILVER", Name: "Silver", Description: "Pinjaman kecil untuk kebutuhan sehari-hari",
		MinAmount: 1_000_000, MaxAmount: 10_000_000, MinTenor: 3, MaxTenor: 12, InterestRate: 12, Active: true},
	{Code: "GOLD", Name: "Gold", Description: "Pinjaman menengah untuk usaha dan pendidikan",
		MinAmount: 10_000_000, MaxAmount: 50_000_000, MinTenor: 6, MaxTenor: 24, InterestRate: 10, Active: true},
	{Code: "PLATINUM", Name: "Platinum", Description: "Pinjaman besar dengan bunga terendah",
		MinAmount: 50_000_000, MaxAmount: 200_000_000, MinTenor: 12, MaxTenor: 36, InterestRate: 8, Active: true},
}

// Run executes all seeders. Every step is idempotent.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"permissions", s.seedPermissions},
		{"roles", s.seedRoles},
		{"super admin", s.seedSuperAdmin},
		{"plafonds", s.seedPlafonds},
	}
	if getEnv("SEED_DEMO_LOANS", "false") == "true" {
		steps = append(steps, struct {
			name string
			fn   func() error
		}{"demo loans", s.seedDemoLoans})
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

func (s *Seeder) seedPermissions() error {
	for _, p := range seedPermissions {
		p := p
		if err := s.db.Where(models.Permission{Name: p.Name}).FirstOrCreate(&p).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedRoles() error {
	var all []models.Permission
	if err := s.db.Find(&all).Error; err != nil {
		return err
	}
	byName := make(map[string]models.Permission, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}

	for _, name := range append([]domain.Role{domain.RoleSuperAdmin}, domain.RoleMarketing,
		domain.RoleBranchManager, domain.RoleBackOffice, domain.RoleCustomer) {
		role := models.Role{Name: string(name)}
		if err := s.db.Where(models.Role{Name: string(name)}).
			Attrs(models.Role{Description: name.Label()}).
			FirstOrCreate(&role).Error; err != nil {
			return err
		}

		perms := all
		if name != domain.RoleSuperAdmin {
			perms = perms[:0:0]
			for _, pn := range seedRolePermissions[name] {
				if p, ok := byName[pn]; ok {
					perms = append(perms, p)
				}
			}
		}
		if err := s.db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}
	return nil
}

// seedSuperAdmin creates the bootstrap account once. Change the password
// after first login in production.
func (s *Seeder) seedSuperAdmin() error {
	username := getEnv("SEED_ADMIN_USERNAME", "superadmin")

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash(getEnv("SEED_ADMIN_PASSWORD", "Admin@12345"))
	if err != nil {
		return err
	}

	var role models.Role
	if err := s.db.Where("name = ?", domain.RoleSuperAdmin).First(&role).Error; err != nil {
		return err
	}

	admin := &models.User{
		Username:  username,
		Email:     getEnv("SEED_ADMIN_EMAIL", "superadmin@eloanmust.id"),
		Password:  hashed,
		FirstName: "Super",
		LastName:  "Admin",
		Active:    true,
		Roles:     []models.Role{role},
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", admin.Username)
	return nil
}

func (s *Seeder) seedPlafonds() error {
	for _, p := range seedPlafonds {
		p := p
		if err := s.db.Where(models.Plafond{Code: p.Code}).FirstOrCreate(&p).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedDemoLoans fills every workflow queue with one application so a fresh
// dev database has something to click through
func (s *Seeder) seedDemoLoans() error {
	var count int64
	if err := s.db.Model(&models.LoanApplication{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var plafonds []models.Plafond
	if err := s.db.Where("active = ?", true).Order("min_amount").Find(&plafonds).Error; err != nil {
		return err
	}
	if len(plafonds) == 0 {
		return nil
	}

	customer := models.Customer{UserID: 0, FullName: "Budi Santoso", Email: "budi@example.com",
		Phone: "081234567890", NIK: "3174000000000001", Occupation: "Wiraswasta", MonthlyIncome: 12_000_000}
	if err := s.db.Where(models.Customer{NIK: customer.NIK}).FirstOrCreate(&customer).Error; err != nil {
		return err
	}

	demo := []struct {
		amount float64
		tenor  int
		status domain.LoanStatus
	}{
		{5_000_000, 6, domain.StatusSubmitted},
		{25_000_000, 12, domain.StatusReviewed},
		{75_000_000, 24, domain.StatusApproved},
	}

	now := time.Now()
	for _, d := range demo {
		det := simulation.Detect(toDomainPlafonds(plafonds), d.amount)
		if !det.Found {
			continue
		}
		quote, err := simulation.Calculate(decimal.NewFromFloat(d.amount), d.tenor, decimal.NewFromFloat(det.Plafond.InterestRate))
		if err != nil {
			return err
		}
		loan := &models.LoanApplication{
			ApplicationNumber:  models.NewApplicationNumber(now),
			CustomerID:         customer.ID,
			PlafondID:          det.Plafond.ID,
			Amount:             d.amount,
			Tenor:              d.tenor,
			InterestRate:       det.Plafond.InterestRate,
			MonthlyInstallment: quote.MonthlyInstallment.InexactFloat64(),
			TotalPayment:       quote.TotalPayment.InexactFloat64(),
			Purpose:            "Modal usaha",
			Status:             d.status,
		}
		if d.status != domain.StatusSubmitted {
			loan.ReviewedBy, loan.ReviewedAt, loan.ReviewNotes = "seeder", &now, "Review selesai, data lengkap"
		}
		if d.status == domain.StatusApproved {
			loan.ApprovedBy, loan.ApprovedAt, loan.ApprovalNotes = "seeder", &now, "Disetujui"
		}
		if err := s.db.Create(loan).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Demo loans seeded for %s", customer.FullName)
	return nil
}

func toDomainPlafonds(rows []models.Plafond) []domain.Plafond {
	out := make([]domain.Plafond, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
