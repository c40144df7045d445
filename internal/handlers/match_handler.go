package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/internmatch/matcher/internal/models"
	"github.com/internmatch/matcher/internal/services"
)

type MatchHandler struct {
	matching services.MatchingService
	worker   services.Worker
}

func NewMatchHandler(matching services.MatchingService, worker services.Worker) *MatchHandler {
	return &MatchHandler{
		matching: matching,
		worker:   worker,
	}
}

// Register mounts the match routes on router.
func (h *MatchHandler) Register(router fiber.Router) {
	router.Post("/students/:id/matches", h.HandleGenerate)
	router.Get("/students/:id/matches", h.HandleList)
	router.Delete("/students/:id/matches", h.HandleClear)
	router.Post("/students/:id/matches/regenerate", h.HandleRegenerate)
	router.Post("/matches/generate", h.HandleGenerateAll)
}

// HandleGenerate handles POST /students/:id/matches
func (h *MatchHandler) HandleGenerate(c *fiber.Ctx) error {
	studentID, err := parseStudentID(c)
	if err != nil {
		return err
	}

	report, err := h.matching.Generate(c.UserContext(), studentID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "Failed to generate matches"})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleList handles GET /students/:id/matches
func (h *MatchHandler) HandleList(c *fiber.Ctx) error {
	studentID, err := parseStudentID(c)
	if err != nil {
		return err
	}

	matches, err := h.matching.ListMatches(c.UserContext(), studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "Failed to load matches"})
	}

	return c.JSON(models.MatchListResponse{
		StudentID: studentID.String(),
		Count:     len(matches),
		Matches:   matches,
	})
}

// HandleClear handles DELETE /students/:id/matches
func (h *MatchHandler) HandleClear(c *fiber.Ctx) error {
	studentID, err := parseStudentID(c)
	if err != nil {
		return err
	}

	deleted, err := h.matching.Clear(c.UserContext(), studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "Failed to clear matches"})
	}

	return c.JSON(models.ClearResponse{StudentID: studentID.String(), Deleted: deleted})
}

// HandleRegenerate handles POST /students/:id/matches/regenerate
func (h *MatchHandler) HandleRegenerate(c *fiber.Ctx) error {
	studentID, err := parseStudentID(c)
	if err != nil {
		return err
	}

	if !h.worker.EnqueueRegeneration(studentID) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "Regeneration queue unavailable"})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.RegenerateResponse{
		StudentID: studentID.String(),
		Status:    "queued",
	})
}

// HandleGenerateAll handles POST /matches/generate
func (h *MatchHandler) HandleGenerateAll(c *fiber.Ctx) error {
	report, err := h.matching.GenerateAll(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "Failed to generate matches"})
	}
	return c.JSON(report)
}

func parseStudentID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid student ID format")
	}
	return id, nil
}
