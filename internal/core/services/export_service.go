package services

import (
	"context"
	"fmt"
	"time"

	"eloan-must/internal/core/domain"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Pinjaman"

type loanColumn struct {
	Header string
	Value  func(l domain.LoanApplication) any
}

var loanColumns = []loanColumn{
	{"No. Pengajuan", func(l domain.LoanApplication) any { return l.ApplicationNumber }},
	{"Nama Nasabah", func(l domain.LoanApplication) any { return l.CustomerName() }},
	{"Email", func(l domain.LoanApplication) any { return l.CustomerEmail() }},
	{"Produk", func(l domain.LoanApplication) any {
		if l.Plafond == nil {
			return ""
		}
		return l.Plafond.Name
	}},
	{"Jumlah", func(l domain.LoanApplication) any { return l.Amount }},
	{"Tenor (bulan)", func(l domain.LoanApplication) any { return l.Tenor }},
	{"Bunga (%)", func(l domain.LoanApplication) any { return l.InterestRate }},
	{"Angsuran", func(l domain.LoanApplication) any { return l.MonthlyInstallment }},
	{"Status", func(l domain.LoanApplication) any { return string(l.Status) }},
	{"Direview Oleh", func(l domain.LoanApplication) any { return l.ReviewedBy }},
	{"Disetujui Oleh", func(l domain.LoanApplication) any { return l.ApprovedBy }},
	{"Alasan Penolakan", func(l domain.LoanApplication) any { return l.RejectionReason }},
	{"Dicairkan Oleh", func(l domain.LoanApplication) any { return l.DisbursedBy }},
	{"Jumlah Cair", func(l domain.LoanApplication) any {
		if l.DisbursementAmount == nil {
			return ""
		}
		return *l.DisbursementAmount
	}},
	{"Tanggal Pengajuan", func(l domain.LoanApplication) any { return l.CreatedAt.Format("2006-01-02 15:04:05") }},
}

// ExportService renders loan listings as XLSX workbooks
type ExportService struct {
	loans *LoanService
}

// NewExportService creates a new export service
func NewExportService(loans *LoanService) *ExportService {
	return &ExportService{loans: loans}
}

// Loans exports every loan (optionally one status) and returns the file
// name and workbook bytes
func (s *ExportService) Loans(ctx context.Context, status domain.LoanStatus, requestedBy string) (string, []byte, error) {
	loans, err := s.loans.ListAll(ctx, status)
	if err != nil {
		return "", nil, err
	}
	data, err := WriteLoansWorkbook(loans, requestedBy)
	if err != nil {
		return "", nil, err
	}
	name := fmt.Sprintf("loans_%s.xlsx", time.Now().Format("20060102_150405"))
	return name, data, nil
}

// WriteLoansWorkbook renders loans into a single-sheet workbook
func WriteLoansWorkbook(loans []domain.LoanApplication, creator string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: creator,
		Title:   "E-Loan Must loan export",
	})

	for i, col := range loanColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, col.Header)
	}

	for r, loan := range loans {
		for c, col := range loanColumns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(exportSheet, cell, col.Value(loan))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
