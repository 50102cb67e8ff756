package handlers

import (
	"strconv"

	"eloan-must/internal/core/services"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PlafondHandler handles loan product endpoints
type PlafondHandler struct {
	plafonds services.PlafondCatalog
}

// NewPlafondHandler creates a new plafond handler
func NewPlafondHandler(plafonds services.PlafondCatalog) *PlafondHandler {
	return &PlafondHandler{plafonds: plafonds}
}

// Active lists active products
// @Summary Active products
// @Description Active loan products ordered by minimum amount
// @Tags Plafonds
// @Produce json
// @Success 200 {object} response.Response{data=[]domain.Plafond}
// @Router /plafonds [get]
func (h *PlafondHandler) Active(c *fiber.Ctx) error {
	items, err := h.plafonds.Active(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list products")
	}
	return response.Success(c, "Products retrieved successfully", items)
}

// All lists every product including inactive ones
// @Summary All products
// @Description Every loan product, active or not (SUPER_ADMIN only)
// @Tags Plafonds
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.Plafond}
// @Router /plafonds/all [get]
func (h *PlafondHandler) All(c *fiber.Ctx) error {
	items, err := h.plafonds.All(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list products")
	}
	return response.Success(c, "Products retrieved successfully", items)
}

// Get returns one product
// @Summary Get product
// @Tags Plafonds
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plafond ID"
// @Success 200 {object} response.Response{data=domain.Plafond}
// @Failure 404 {object} response.Response
// @Router /plafonds/{id} [get]
func (h *PlafondHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid product ID")
	}
	p, err := h.plafonds.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get product")
	}
	return response.Success(c, "Product retrieved successfully", p)
}

// Detect finds the product for an amount
// @Summary Detect product
// @Description First active product whose amount range contains the amount
// @Tags Plafonds
// @Produce json
// @Param amount query number true "Loan amount"
// @Success 200 {object} response.Response{data=domain.PlafondDetection}
// @Failure 400 {object} response.Response
// @Router /plafonds/detect [get]
func (h *PlafondHandler) Detect(c *fiber.Ctx) error {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount <= 0 {
		return response.BadRequest(c, "amount must be a positive number")
	}

	det, err := h.plafonds.Detect(c.Context(), amount)
	if err != nil {
		return respondError(c, err, "Failed to detect product")
	}
	return response.Success(c, det.Message, det)
}

// Create creates a product
// @Summary Create product
// @Tags Plafonds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PlafondInput true "Product"
// @Success 201 {object} response.Response{data=domain.Plafond}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /plafonds [post]
func (h *PlafondHandler) Create(c *fiber.Ctx) error {
	var req services.PlafondInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	p, err := h.plafonds.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Failed to create product")
	}
	return response.Created(c, "Product created successfully", p)
}

// Update updates a product
// @Summary Update product
// @Tags Plafonds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plafond ID"
// @Param body body services.PlafondInput true "Product"
// @Success 200 {object} response.Response{data=domain.Plafond}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /plafonds/{id} [put]
func (h *PlafondHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid product ID")
	}
	var req services.PlafondInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	p, err := h.plafonds.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}
	return response.Success(c, "Product updated successfully", p)
}

// ToggleActive flips a product's active flag
// @Summary Toggle product
// @Tags Plafonds
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plafond ID"
// @Success 200 {object} response.Response{data=domain.Plafond}
// @Failure 404 {object} response.Response
// @Router /plafonds/{id}/toggle-active [patch]
func (h *PlafondHandler) ToggleActive(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid product ID")
	}
	p, err := h.plafonds.ToggleActive(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to toggle product")
	}
	return response.Success(c, "Product status updated", p)
}

// Delete soft-deletes a product
// @Summary Delete product
// @Tags Plafonds
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plafond ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /plafonds/{id} [delete]
func (h *PlafondHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid product ID")
	}
	if err := h.plafonds.Delete(c.Context(), id); err != nil {
		return respondError(c, err, "Failed to delete product")
	}
	return response.Success(c, "Product deleted successfully", nil)
}
