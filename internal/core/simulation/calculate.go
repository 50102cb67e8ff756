package simulation

import (
	"errors"

	"eloan-must/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ErrInvalidTerms is returned for non-positive amount or tenor
var ErrInvalidTerms = errors.New("amount and tenor must be positive")

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Quote holds flat-interest repayment figures
type Quote struct {
	TotalInterest      decimal.Decimal
	TotalPayment       decimal.Decimal
	MonthlyInstallment decimal.Decimal
}

// Calculate computes a flat-interest quote. annualRate is a percentage.
// The monthly installment is rounded half-up to whole currency units.
func Calculate(amount decimal.Decimal, tenor int, annualRate decimal.Decimal) (Quote, error) {
	if !amount.IsPositive() || tenor <= 0 || annualRate.IsNegative() {
		return Quote{}, ErrInvalidTerms
	}
	months := decimal.NewFromInt(int64(tenor))

	interest := amount.Mul(annualRate).Div(hundred).Mul(months).Div(twelve)
	total := amount.Add(interest)
	monthly := total.Div(months).Round(0)

	return Quote{
		TotalInterest:      interest.Round(2),
		TotalPayment:       total.Round(2),
		MonthlyInstallment: monthly,
	}, nil
}

// Simulate detects the product for amount and quotes it at tenor. Tenor is
// clamped to the product maximum first.
func Simulate(products []domain.Plafond, amount float64, tenor int) (domain.SimulationResult, error) {
	det := Detect(products, amount)
	if !det.Found {
		return domain.SimulationResult{Amount: amount, TenorMonth: tenor, Message: det.Message}, domain.ErrPlafondNotFound
	}
	p := det.Plafond

	effective, clamped := ClampTenor(tenor, p.MaxTenor)
	quote, err := Calculate(decimal.NewFromFloat(amount), effective, decimal.NewFromFloat(p.InterestRate))
	if err != nil {
		return domain.SimulationResult{}, err
	}

	msg := "Simulasi berhasil"
	if clamped {
		msg = "Tenor disesuaikan dengan maksimal produk"
	}

	return domain.SimulationResult{
		PlafondID:          p.ID,
		PlafondName:        p.Name,
		Amount:             amount,
		TenorMonth:         effective,
		MaxTenorMonth:      p.MaxTenor,
		BaseInterestRate:   p.InterestRate,
		ActualInterestRate: p.InterestRate,
		TotalInterest:      quote.TotalInterest.InexactFloat64(),
		TotalPayment:       quote.TotalPayment.InexactFloat64(),
		MonthlyInstallment: quote.MonthlyInstallment.InexactFloat64(),
		Message:            msg,
	}, nil
}
