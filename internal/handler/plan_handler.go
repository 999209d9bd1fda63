package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/strengthlab/overload/internal/domain"
	"github.com/strengthlab/overload/internal/middleware"
	"github.com/strengthlab/overload/internal/service"
)

type PlanHandler struct {
	plannerService *service.PlannerService
}

func NewPlanHandler(plannerService *service.PlannerService) *PlanHandler {
	return &PlanHandler{plannerService: plannerService}
}

// Generate handles POST /v1/plans/generate
func (h *PlanHandler) Generate(c *fiber.Ctx) error {
	var state domain.OnboardingState
	if err := c.BodyParser(&state); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	plan, err := h.plannerService.GeneratePlan(c.Context(), middleware.UserID(c), state)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// Onboard handles POST /v1/plans/onboarding. The body carries the full
// conversation so far; the server holds no conversational state.
func (h *PlanHandler) Onboard(c *fiber.Ctx) error {
	var req struct {
		Messages []domain.OnboardingMessage `json:"messages"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "messages must not be empty"})
	}

	response, err := h.plannerService.Onboard(c.Context(), req.Messages)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// List handles GET /v1/plans
func (h *PlanHandler) List(c *fiber.Ctx) error {
	plans, err := h.plannerService.ListPlans(c.Context(), middleware.UserID(c), queryInt64(c, "skip"), queryInt64(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(plans)
}

// Get handles GET /v1/plans/:id
func (h *PlanHandler) Get(c *fiber.Ctx) error {
	plan, err := h.plannerService.GetPlan(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(plan)
}

// Delete handles DELETE /v1/plans/:id
func (h *PlanHandler) Delete(c *fiber.Ctx) error {
	if err := h.plannerService.DeletePlan(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}
