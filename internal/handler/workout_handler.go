package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/strengthlab/overload/internal/domain"
	"github.com/strengthlab/overload/internal/middleware"
	"github.com/strengthlab/overload/internal/service"
)

// WorkoutHandler exposes the workout lifecycle, set logging, suggestions and
// history export. Domain failures propagate to the error handler for status
// mapping.
type WorkoutHandler struct {
	workoutService *service.WorkoutService
	coachService   *service.CoachService
	exportService  *service.ExportService
}

func NewWorkoutHandler(
	workoutService *service.WorkoutService,
	coachService *service.CoachService,
	exportService *service.ExportService,
) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
		coachService:   coachService,
		exportService:  exportService,
	}
}

// Create handles POST /v1/workouts
func (h *WorkoutHandler) Create(c *fiber.Ctx) error {
	var req service.CreateWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	workout, err := h.workoutService.Create(c.Context(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(workout)
}

// List handles GET /v1/workouts. Without a date filter the response is a
// summary view without exercises.
func (h *WorkoutHandler) List(c *fiber.Ctx) error {
	filter := domain.WorkoutFilter{
		Date:  c.Query("date"),
		Skip:  queryInt64(c, "skip"),
		Limit: queryInt64(c, "limit"),
	}

	workouts, err := h.workoutService.List(c.Context(), middleware.UserID(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(workouts)
}

// Get handles GET /v1/workouts/:id
func (h *WorkoutHandler) Get(c *fiber.Ctx) error {
	workout, err := h.workoutService.Get(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(workout)
}

// Update handles PATCH /v1/workouts/:id
func (h *WorkoutHandler) Update(c *fiber.Ctx) error {
	var req service.UpdateWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	workout, err := h.workoutService.Update(c.Context(), middleware.UserID(c), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(workout)
}

// UpdateExercises handles PUT /v1/workouts/:id/exercises
func (h *WorkoutHandler) UpdateExercises(c *fiber.Ctx) error {
	var req struct {
		Exercises []domain.WorkoutExercise `json:"exercises"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	workout, err := h.workoutService.UpdateExercises(c.Context(), middleware.UserID(c), c.Params("id"), req.Exercises)
	if err != nil {
		return err
	}
	return c.JSON(workout)
}

// Delete handles DELETE /v1/workouts/:id
func (h *WorkoutHandler) Delete(c *fiber.Ctx) error {
	if err := h.workoutService.Delete(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// Start handles POST /v1/workouts/:id/start
func (h *WorkoutHandler) Start(c *fiber.Ctx) error {
	workout, err := h.workoutService.Start(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(workout)
}

// Cancel handles POST /v1/workouts/:id/cancel
func (h *WorkoutHandler) Cancel(c *fiber.Ctx) error {
	workout, err := h.workoutService.Cancel(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(workout)
}

// Finish handles POST /v1/workouts/:id/finish
func (h *WorkoutHandler) Finish(c *fiber.Ctx) error {
	workout, err := h.workoutService.Finish(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(workout)
}

// Suggest handles POST /v1/workouts/:id/suggestions. The body is an optional
// training context.
func (h *WorkoutHandler) Suggest(c *fiber.Ctx) error {
	var tctx domain.TrainingContext
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&tctx); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
		}
	}

	suggestion, err := h.coachService.SuggestWorkout(c.Context(), middleware.UserID(c), c.Params("id"), &tctx)
	if err != nil {
		return err
	}
	return c.JSON(suggestion)
}

// Export handles POST /v1/workouts/export
func (h *WorkoutHandler) Export(c *fiber.Ctx) error {
	url, err := h.exportService.Export(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}

func queryInt64(c *fiber.Ctx, key string) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
