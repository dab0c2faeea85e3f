package teacher

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/examly/backend/internal/apperr"
	"github.com/examly/backend/internal/dto"
	"github.com/examly/backend/internal/repository"
	"github.com/examly/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type PlagiarismController struct {
	plagiarismService service.PlagiarismService
	userRepository    repository.UserRepository
}

func NewPlagiarismController(plagiarismService service.PlagiarismService, userRepository repository.UserRepository) *PlagiarismController {
	return &PlagiarismController{
		plagiarismService: plagiarismService,
		userRepository:    userRepository,
	}
}

// ListExamChecks returns plagiarism summaries for every checked attempt of
// an exam, least unique first. Teachers only.
// GET /exams/:exam_id/plagiarism-checks?user_id=...&max_uniqueness=...
func (c *PlagiarismController) ListExamChecks(ctx *gin.Context) {
	examID, err := uuid.Parse(ctx.Param("exam_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid exam ID format"})
		return
	}
	if !c.requireTeacher(ctx) {
		return
	}

	var maxUniqueness *float64
	if raw := ctx.Query("max_uniqueness"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "max_uniqueness must be a number"})
			return
		}
		maxUniqueness = &v
	}

	checks, err := c.plagiarismService.ListExamChecks(ctx.Request.Context(), examID, maxUniqueness)
	if err != nil {
		respondServiceError(ctx, err, "ListExamChecks")
		return
	}
	ctx.JSON(http.StatusOK, checks)
}

// GetComparison renders a side-by-side view of two attempts' long-answer
// texts with matching fragments highlighted. Teachers only.
// GET /attempts/:attempt_id/compare/:other_attempt_id?user_id=...
func (c *PlagiarismController) GetComparison(ctx *gin.Context) {
	attemptID, err := uuid.Parse(ctx.Param("attempt_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return
	}
	otherAttemptID, err := uuid.Parse(ctx.Param("other_attempt_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid other attempt ID format"})
		return
	}
	if !c.requireTeacher(ctx) {
		return
	}

	comparison, err := c.plagiarismService.GetComparison(ctx.Request.Context(), attemptID, otherAttemptID)
	if err != nil {
		respondServiceError(ctx, err, "GetComparison")
		return
	}
	ctx.JSON(http.StatusOK, comparison)
}

// requireTeacher resolves user_id and rejects the request unless the user
// holds the teacher role. Returns false when a response was already written.
func (c *PlagiarismController) requireTeacher(ctx *gin.Context) bool {
	userID, err := uuid.Parse(ctx.Query("user_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid or missing user_id query parameter"})
		return false
	}
	user, err := c.userRepository.FindByID(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err, "requireTeacher")
		return false
	}
	if !user.IsTeacher() {
		respondServiceError(ctx, fmt.Errorf("plagiarism reports are restricted to teachers: %w", apperr.ErrForbidden), "requireTeacher")
		return false
	}
	return true
}

func respondServiceError(ctx *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Str("op", op).Msg("Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
	}
}
