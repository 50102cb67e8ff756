package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"eloan-must/internal/adapters/persistence/cache"
	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/simulation"
	"eloan-must/internal/pkg/metrics"

	"gorm.io/gorm"
)

// PlafondService manages lending products and answers detection queries
type PlafondService struct {
	repo  repositories.PlafondRepository
	cache cache.PlafondCache
}

// NewPlafondService creates a new plafond service
func NewPlafondService(repo repositories.PlafondRepository, c cache.PlafondCache) *PlafondService {
	if c == nil {
		c = cache.NewPlafondCache(nil, 0)
	}
	return &PlafondService{repo: repo, cache: c}
}

// PlafondInput represents create/update product input
type PlafondInput struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	MinAmount    float64 `json:"minAmount"`
	MaxAmount    float64 `json:"maxAmount"`
	MinTenor     int     `json:"minTenor"`
	MaxTenor     int     `json:"maxTenor"`
	InterestRate float64 `json:"interestRate"`
	AdminFee     float64 `json:"adminFee"`
	Active       *bool   `json:"active"`
}

// Validate checks product invariants and returns the violated rules
func (in *PlafondInput) Validate() []string {
	var errs []string
	if strings.TrimSpace(in.Code) == "" {
		errs = append(errs, "code is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, "name is required")
	}
	if in.MinAmount <= 0 {
		errs = append(errs, "minAmount must be greater than 0")
	}
	if in.MinAmount > in.MaxAmount {
		errs = append(errs, "minAmount must not exceed maxAmount")
	}
	if in.MinTenor <= 0 {
		errs = append(errs, "minTenor must be greater than 0")
	}
	if in.MinTenor > in.MaxTenor {
		errs = append(errs, "minTenor must not exceed maxTenor")
	}
	if in.InterestRate < 0 {
		errs = append(errs, "interestRate must not be negative")
	}
	if in.AdminFee < 0 {
		errs = append(errs, "adminFee must not be negative")
	}
	return errs
}

// Active returns active products in detection order, served from cache when possible
func (s *PlafondService) Active(ctx context.Context) ([]domain.Plafond, error) {
	if cached, err := s.cache.GetActive(ctx); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("⚠️ Plafond cache read failed: %v", err)
	}

	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := toDomainPlafonds(rows)

	if err := s.cache.SetActive(ctx, out); err != nil {
		log.Printf("⚠️ Plafond cache write failed: %v", err)
	}
	return out, nil
}

// All returns every product including inactive ones
func (s *PlafondService) All(ctx context.Context) ([]domain.Plafond, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDomainPlafonds(rows), nil
}

// Get returns one product
func (s *PlafondService) Get(ctx context.Context, id uint) (domain.Plafond, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Plafond{}, domain.ErrPlafondNotFound
		}
		return domain.Plafond{}, err
	}
	return row.ToDomain(), nil
}

// Detect finds the product tier for amount among active products
func (s *PlafondService) Detect(ctx context.Context, amount float64) (domain.PlafondDetection, error) {
	products, err := s.Active(ctx)
	if err != nil {
		return domain.PlafondDetection{}, err
	}
	det := simulation.Detect(products, amount)
	return det.ToResponse(), nil
}

// Simulate quotes amount over tenor with the detected product
func (s *PlafondService) Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, error) {
	if req.Amount <= 0 || req.TenorMonth <= 0 {
		return domain.SimulationResult{}, simulation.ErrInvalidTerms
	}
	products, err := s.Active(ctx)
	if err != nil {
		return domain.SimulationResult{}, err
	}
	res, err := simulation.Simulate(products, req.Amount, req.TenorMonth)
	metrics.ObserveSimulation(!errors.Is(err, domain.ErrPlafondNotFound))
	return res, err
}

// Create creates a product
func (s *PlafondService) Create(ctx context.Context, in *PlafondInput) (domain.Plafond, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return domain.Plafond{}, &ValidationError{Errors: errs}
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	taken, err := s.repo.ExistsByCode(ctx, code, 0)
	if err != nil {
		return domain.Plafond{}, err
	}
	if taken {
		return domain.Plafond{}, domain.ErrPlafondCodeTaken
	}

	row := &models.Plafond{Active: true}
	applyPlafondInput(row, in)
	row.Code = code
	if err := s.repo.Create(ctx, row); err != nil {
		return domain.Plafond{}, err
	}
	s.invalidate(ctx)

	log.Printf("✅ Plafond created: %s (%s)", row.Name, row.Code)
	return row.ToDomain(), nil
}

// Update replaces a product's fields
func (s *PlafondService) Update(ctx context.Context, id uint, in *PlafondInput) (domain.Plafond, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return domain.Plafond{}, &ValidationError{Errors: errs}
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Plafond{}, domain.ErrPlafondNotFound
		}
		return domain.Plafond{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))
	taken, err := s.repo.ExistsByCode(ctx, code, id)
	if err != nil {
		return domain.Plafond{}, err
	}
	if taken {
		return domain.Plafond{}, domain.ErrPlafondCodeTaken
	}

	applyPlafondInput(row, in)
	row.Code = code
	if err := s.repo.Update(ctx, row); err != nil {
		return domain.Plafond{}, err
	}
	s.invalidate(ctx)

	log.Printf("✅ Plafond updated: %s", row.Code)
	return row.ToDomain(), nil
}

// ToggleActive flips a product's active flag and returns the new state
func (s *PlafondService) ToggleActive(ctx context.Context, id uint) (domain.Plafond, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Plafond{}, domain.ErrPlafondNotFound
		}
		return domain.Plafond{}, err
	}
	row.Active = !row.Active
	if err := s.repo.SetActive(ctx, id, row.Active); err != nil {
		return domain.Plafond{}, err
	}
	s.invalidate(ctx)
	return row.ToDomain(), nil
}

// Delete soft-deletes a product
func (s *PlafondService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *PlafondService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("⚠️ Plafond cache invalidation failed: %v", err)
	}
}

func applyPlafondInput(row *models.Plafond, in *PlafondInput) {
	row.Name = strings.TrimSpace(in.Name)
	row.Description = in.Description
	row.MinAmount = in.MinAmount
	row.MaxAmount = in.MaxAmount
	row.MinTenor = in.MinTenor
	row.MaxTenor = in.MaxTenor
	row.InterestRate = in.InterestRate
	row.AdminFee = in.AdminFee
	if in.Active != nil {
		row.Active = *in.Active
	}
}

func toDomainPlafonds(rows []*models.Plafond) []domain.Plafond {
	out := make([]domain.Plafond, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}
	return out
}
