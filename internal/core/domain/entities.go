package domain

import "time"

// LoanStatus is the lifecycle status of a loan application
type LoanStatus string

const (
	StatusSubmitted LoanStatus = "SUBMITTED"
	StatusInReview  LoanStatus = "IN_REVIEW"
	StatusReviewed  LoanStatus = "REVIEWED"
	StatusApproved  LoanStatus = "APPROVED"
	StatusRejected  LoanStatus = "REJECTED"
	StatusDisbursed LoanStatus = "DISBURSED"
	StatusCompleted LoanStatus = "COMPLETED"
	StatusCancelled LoanStatus = "CANCELLED"
)

var allStatuses = []LoanStatus{
	StatusSubmitted,
	StatusInReview,
	StatusReviewed,
	StatusApproved,
	StatusRejected,
	StatusDisbursed,
	StatusCompleted,
	StatusCancelled,
}

// AllStatuses returns every status in lifecycle order
func AllStatuses() []LoanStatus {
	out := make([]LoanStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid reports whether s is one of the known statuses
func (s LoanStatus) Valid() bool {
	for _, st := range allStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// NotificationType classifies a notification record
type NotificationType string

const (
	NotifyLoanSubmitted NotificationType = "LOAN_SUBMITTED"
	NotifyLoanReviewed  NotificationType = "LOAN_REVIEWED"
	NotifyLoanApproved  NotificationType = "LOAN_APPROVED"
	NotifyLoanRejected  NotificationType = "LOAN_REJECTED"
	NotifyLoanDisbursed NotificationType = "LOAN_DISBURSED"
	NotifySystem        NotificationType = "SYSTEM"
	NotifyInfo          NotificationType = "INFO"
)

// Customer is the read-only customer snapshot attached to a loan
type Customer struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"userId"`
	FullName      string  `json:"fullName"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	NIK           string  `json:"nik"`
	Address       string  `json:"address,omitempty"`
	Occupation    string  `json:"occupation,omitempty"`
	MonthlyIncome float64 `json:"monthlyIncome,omitempty"`
	ProfilePhoto  string  `json:"profilePhoto,omitempty"`
	KtpPhoto      string  `json:"ktpPhoto,omitempty"`
	SelfiePhoto   string  `json:"selfiePhoto,omitempty"`
}

// Plafond is a lending product tier
type Plafond struct {
	ID           uint    `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	MinAmount    float64 `json:"minAmount"`
	MaxAmount    float64 `json:"maxAmount"`
	MinTenor     int     `json:"minTenor"`
	MaxTenor     int     `json:"maxTenor"`
	InterestRate float64 `json:"interestRate"`
	AdminFee     float64 `json:"adminFee,omitempty"`
	Active       bool    `json:"active"`
}

// Contains reports whether amount falls inside the product range (inclusive)
func (p Plafond) Contains(amount float64) bool {
	return amount >= p.MinAmount && amount <= p.MaxAmount
}

// LoanApplication is one customer loan request as seen by staff
type LoanApplication struct {
	ID                 uint       `json:"id"`
	ApplicationNumber  string     `json:"applicationNumber"`
	Customer           *Customer  `json:"customer,omitempty"`
	Plafond            *Plafond   `json:"plafond,omitempty"`
	Amount             float64    `json:"amount"`
	Tenor              int        `json:"tenor"`
	InterestRate       float64    `json:"interestRate"`
	MonthlyInstallment float64    `json:"monthlyInstallment"`
	TotalPayment       float64    `json:"totalPayment"`
	Purpose            string     `json:"purpose,omitempty"`
	Status             LoanStatus `json:"status"`

	ReviewedBy  string     `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewNotes string     `json:"reviewNotes,omitempty"`

	ApprovedBy      string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	ApprovalNotes   string     `json:"approvalNotes,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`

	DisbursedBy        string     `json:"disbursedBy,omitempty"`
	DisbursedAt        *time.Time `json:"disbursedAt,omitempty"`
	DisbursementAmount *float64   `json:"disbursementAmount,omitempty"`
	DisbursementNotes  string     `json:"disbursementNotes,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// CustomerName returns the customer's full name or an empty string
func (l LoanApplication) CustomerName() string {
	if l.Customer == nil {
		return ""
	}
	return l.Customer.FullName
}

// CustomerEmail returns the customer's email or an empty string
func (l LoanApplication) CustomerEmail() string {
	if l.Customer == nil {
		return ""
	}
	return l.Customer.Email
}

// Permission is a named capability
type Permission struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RoleInfo is a role together with its permissions
type RoleInfo struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// User is a staff account
type User struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	Roles       []RoleInfo `json:"roles"`
	Permissions []string   `json:"permissions,omitempty"`
	Active      bool       `json:"active"`
}

// RoleNames returns the user's roles as typed role names
func (u User) RoleNames() []Role {
	out := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, Role(r.Name))
	}
	return out
}

// Notification is a staff or customer notification record
type Notification struct {
	ID        uint             `json:"id"`
	UserID    uint             `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	Data      string           `json:"data,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotificationCount holds notification totals for a user
type NotificationCount struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// SimulationRequest is the body of POST /loans/simulate
type SimulationRequest struct {
	Amount     float64 `json:"amount"`
	TenorMonth int     `json:"tenorMonth"`
}

// SimulationResult is the authoritative simulation answer
type SimulationResult struct {
	PlafondID          uint    `json:"plafondId"`
	PlafondName        string  `json:"plafondName"`
	Amount             float64 `json:"amount"`
	TenorMonth         int     `json:"tenorMonth"`
	MaxTenorMonth      int     `json:"maxTenorMonth"`
	BaseInterestRate   float64 `json:"baseInterestRate"`
	ActualInterestRate float64 `json:"actualInterestRate"`
	TotalInterest      float64 `json:"totalInterest"`
	TotalPayment       float64 `json:"totalPayment"`
	MonthlyInstallment float64 `json:"monthlyInstallment"`
	Message            string  `json:"message,omitempty"`
}

// PlafondDetection is the result of GET /plafonds/detect
type PlafondDetection struct {
	Found         bool    `json:"found"`
	Message       string  `json:"message"`
	PlafondID     uint    `json:"plafondId,omitempty"`
	PlafondName   string  `json:"plafondName,omitempty"`
	PlafondCode   string  `json:"plafondCode,omitempty"`
	MinAmount     float64 `json:"minAmount,omitempty"`
	MaxAmount     float64 `json:"maxAmount,omitempty"`
	MinTenorMonth int     `json:"minTenorMonth,omitempty"`
	MaxTenorMonth int     `json:"maxTenorMonth,omitempty"`
	InterestRate  float64 `json:"interestRate,omitempty"`
}

// ReviewRequest is the body of POST /reviews/{id}
type ReviewRequest struct {
	ReviewStatus string `json:"reviewStatus"`
	ReviewNote   string `json:"reviewNote,omitempty"`
}

// ApprovalRequest is the body of POST /approvals/{id}
type ApprovalRequest struct {
	ApprovalStatus  string `json:"approvalStatus"`
	ApprovalNote    string `json:"approvalNote,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// DashboardStats summarizes loans for the dashboard
type DashboardStats struct {
	TotalApplications    int64   `json:"totalApplications"`
	PendingReview        int64   `json:"pendingReview"`
	PendingApproval      int64   `json:"pendingApproval"`
	Approved             int64   `json:"approved"`
	Rejected             int64   `json:"rejected"`
	Disbursed            int64   `json:"disbursed"`
	TotalDisbursedAmount float64 `json:"totalDisbursedAmount"`
	TotalAllAmount       float64 `json:"totalAllAmount"`
}

// Page is a page of results, 0-based
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}
