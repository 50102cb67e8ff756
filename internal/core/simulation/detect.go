// Package simulation detects the product tier for a loan amount and computes
// flat-interest installment figures.
package simulation

import (
	"fmt"

	"eloan-must/internal/core/domain"
)

// Preview input bounds, in whole currency units
const (
	MinAmount = 1_000_000
	MaxAmount = 500_000_000
)

// Tenors is the fixed tenor menu, in months
var Tenors = []int{1, 3, 6, 9, 12, 18, 24, 30, 36, 42, 48, 54, 60}

// Detection is the outcome of product detection
type Detection struct {
	Found   bool
	Plafond *domain.Plafond
	Message string
}

// ToResponse converts the detection into its API shape
func (d Detection) ToResponse() domain.PlafondDetection {
	out := domain.PlafondDetection{Found: d.Found, Message: d.Message}
	if d.Plafond != nil {
		out.PlafondID = d.Plafond.ID
		out.PlafondName = d.Plafond.Name
		out.PlafondCode = d.Plafond.Code
		out.MinAmount = d.Plafond.MinAmount
		out.MaxAmount = d.Plafond.MaxAmount
		out.MinTenorMonth = d.Plafond.MinTenor
		out.MaxTenorMonth = d.Plafond.MaxTenor
		out.InterestRate = d.Plafond.InterestRate
	}
	return out
}

// Detect returns the first active product, in the given order, whose amount
// range contains amount. Overlapping ranges resolve to the first match.
func Detect(products []domain.Plafond, amount float64) Detection {
	if amount <= 0 {
		return Detection{Message: "Jumlah pinjaman harus lebih dari 0"}
	}
	for i := range products {
		p := products[i]
		if !p.Active {
			continue
		}
		if p.Contains(amount) {
			return Detection{
				Found:   true,
				Plafond: &p,
				Message: fmt.Sprintf("Produk %s, tenor maksimal %d bulan", p.Name, p.MaxTenor),
			}
		}
	}
	return Detection{Message: "Tidak ada produk yang sesuai untuk jumlah pinjaman ini"}
}

// InRange reports whether amount is within the preview bounds
func InRange(amount float64) bool {
	return amount >= MinAmount && amount <= MaxAmount
}

// ClampTenor reduces selected to maxTenor when it exceeds it. The second
// return value reports whether a clamp happened.
func ClampTenor(selected, maxTenor int) (int, bool) {
	if maxTenor > 0 && selected > maxTenor {
		return maxTenor, true
	}
	return selected, false
}

// AvailableTenors returns the tenor menu entries allowed up to maxTenor
func AvailableTenors(maxTenor int) []int {
	if maxTenor <= 0 {
		return nil
	}
	var out []int
	for _, t := range Tenors {
		if t <= maxTenor {
			out = append(out, t)
		}
	}
	return out
}
