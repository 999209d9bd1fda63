package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/strengthlab/overload/internal/domain"
	"github.com/strengthlab/overload/internal/middleware"
	"github.com/strengthlab/overload/internal/service"
)

type TemplateHandler struct {
	templateService *service.TemplateService
}

func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create handles POST /v1/templates
func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	var req domain.Template
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	template, err := h.templateService.Create(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

// List handles GET /v1/templates
func (h *TemplateHandler) List(c *fiber.Ctx) error {
	templates, err := h.templateService.List(c.Context(), middleware.UserID(c), queryInt64(c, "skip"), queryInt64(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(templates)
}

// Get handles GET /v1/templates/:id
func (h *TemplateHandler) Get(c *fiber.Ctx) error {
	template, err := h.templateService.Get(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(template)
}

// Update handles PUT /v1/templates/:id
func (h *TemplateHandler) Update(c *fiber.Ctx) error {
	var req domain.Template
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	template, err := h.templateService.Update(c.Context(), middleware.UserID(c), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(template)
}

// Delete handles DELETE /v1/templates/:id
func (h *TemplateHandler) Delete(c *fiber.Ctx) error {
	if err := h.templateService.Delete(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}
