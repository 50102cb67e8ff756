package handlers

import (
	"fmt"
	"strings"

	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/core/services"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan listing, simulation, export and the
// review, approval and disbursement endpoints
type LoanHandler struct {
	loans    services.LoanWorkflow
	plafonds services.PlafondCatalog
	exporter services.LoanExporter
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loans services.LoanWorkflow, plafonds services.PlafondCatalog, exporter services.LoanExporter) *LoanHandler {
	return &LoanHandler{
		loans:    loans,
		plafonds: plafonds,
		exporter: exporter,
	}
}

// DisbursementRequest is the optional body of POST /disbursements/{id}
type DisbursementRequest struct {
	Note string `json:"note"`
}

// Simulate handles loan simulation
// @Summary Simulate a loan
// @Description Detect the product for the amount, clamp the tenor and compute flat-rate installments
// @Tags Loans
// @Accept json
// @Produce json
// @Param body body domain.SimulationRequest true "Amount and tenor"
// @Success 200 {object} response.Response{data=domain.SimulationResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/simulate [post]
func (h *LoanHandler) Simulate(c *fiber.Ctx) error {
	var req domain.SimulationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.plafonds.Simulate(c.Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to simulate loan")
	}
	return response.Success(c, "Simulation calculated", result)
}

// ListAll lists every loan
// @Summary List all loans
// @Description Every loan, newest first, optionally filtered by status (SUPER_ADMIN only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param status query string false "Loan status"
// @Success 200 {object} response.Response{data=[]domain.LoanApplication}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans/all [get]
func (h *LoanHandler) ListAll(c *fiber.Ctx) error {
	status := domain.LoanStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))

	loans, err := h.loans.ListAll(c.Context(), status)
	if err != nil {
		return respondError(c, err, "Failed to list loans")
	}
	return response.Success(c, "Loans retrieved successfully", loans)
}

// Get returns one loan
// @Summary Get loan
// @Description Get a loan by ID. Staff only see statuses their roles may act on.
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response{data=domain.LoanApplication}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loans.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get loan")
	}
	if !lifecycle.Visible(currentRoles(c), loan.Status) {
		return response.Forbidden(c, "You don't have permission to view this loan")
	}
	return response.Success(c, "Loan retrieved successfully", loan)
}

// History returns the status history of a loan
// @Summary Loan history
// @Description Every status change of a loan, oldest first
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/history [get]
func (h *LoanHandler) History(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	history, err := h.loans.History(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get loan history")
	}
	return response.Success(c, "Loan history retrieved successfully", history)
}

// Export downloads loans as an XLSX workbook
// @Summary Export loans
// @Description Download every loan (optionally one status) as XLSX (SUPER_ADMIN only)
// @Tags Loans
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Loan status"
// @Success 200 {file} file
// @Failure 400 {object} response.Response
// @Router /loans/export [get]
func (h *LoanHandler) Export(c *fiber.Ctx) error {
	status := domain.LoanStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	username, _ := c.Locals("username").(string)

	name, data, err := h.exporter.Loans(c.Context(), status, username)
	if err != nil {
		return respondError(c, err, "Failed to export loans")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(data)
}

// PendingReviews lists the review queue
// @Summary Pending reviews
// @Description Loans waiting for MARKETING review
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.LoanApplication}
// @Router /reviews/pending [get]
func (h *LoanHandler) PendingReviews(c *fiber.Ctx) error {
	return h.pending(c, lifecycle.QueueReview)
}

// Review completes the review of a loan
// @Summary Review loan
// @Description Complete the review. A SUBMITTED loan goes through IN_REVIEW to REVIEWED in one call.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body domain.ReviewRequest true "Review decision"
// @Success 200 {object} response.Response{data=domain.LoanApplication}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reviews/{id} [post]
func (h *LoanHandler) Review(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}
	var req domain.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loans.Review(c.Context(), id, currentActor(c), req)
	if err != nil {
		return respondError(c, err, "Failed to review loan")
	}
	return response.Success(c, "Loan reviewed successfully", loan)
}

// PendingApprovals lists the approval queue
// @Summary Pending approvals
// @Description Loans waiting for a BRANCH_MANAGER decision
// @Tags Approvals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.LoanApplication}
// @Router /approvals/pending [get]
func (h *LoanHandler) PendingApprovals(c *fiber.Ctx) error {
	return h.pending(c, lifecycle.QueueApproval)
}

// Decide approves or rejects a loan
// @Summary Approve or reject loan
// @Description approvalStatus APPROVED or REJECTED. Rejection needs rejectionReason (approvalNote is used when it is empty).
// @Tags Approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body domain.ApprovalRequest true "Approval decision"
// @Success 200 {object} response.Response{data=domain.LoanApplication}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /approvals/{id} [post]
func (h *LoanHandler) Decide(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}
	var req domain.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loans.Decide(c.Context(), id, currentActor(c), req)
	if err != nil {
		return respondError(c, err, "Failed to process approval")
	}

	message := "Loan approved successfully"
	if loan.Status == domain.StatusRejected {
		message = "Loan rejected"
	}
	return response.Success(c, message, loan)
}

// PendingDisbursements lists the disbursement queue
// @Summary Pending disbursements
// @Description Approved loans waiting for BACK_OFFICE disbursement
// @Tags Disbursements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.LoanApplication}
// @Router /disbursements/pending [get]
func (h *LoanHandler) PendingDisbursements(c *fiber.Ctx) error {
	return h.pending(c, lifecycle.QueueDisbursement)
}

// Disbursed lists disbursed loans
// @Summary Disbursed loans
// @Description Loans already disbursed or completed
// @Tags Disbursements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.LoanApplication}
// @Router /disbursements [get]
func (h *LoanHandler) Disbursed(c *fiber.Ctx) error {
	loans, err := h.loans.Disbursed(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list disbursed loans")
	}
	return response.Success(c, "Disbursed loans retrieved successfully", loans)
}

// Disburse disburses an approved loan
// @Summary Disburse loan
// @Description Disburse the full loan amount. The body is optional.
// @Tags Disbursements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body DisbursementRequest false "Disbursement note"
// @Success 200 {object} response.Response{data=domain.LoanApplication}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /disbursements/{id} [post]
func (h *LoanHandler) Disburse(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}
	var req DisbursementRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	loan, err := h.loans.Disburse(c.Context(), id, currentActor(c), req.Note)
	if err != nil {
		return respondError(c, err, "Failed to disburse loan")
	}
	return response.Success(c, "Loan disbursed successfully", loan)
}

func (h *LoanHandler) pending(c *fiber.Ctx, queue lifecycle.Queue) error {
	loans, err := h.loans.Pending(c.Context(), queue)
	if err != nil {
		return respondError(c, err, "Failed to list pending loans")
	}
	return response.Success(c, "Pending loans retrieved successfully", loans)
}
