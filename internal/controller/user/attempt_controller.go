package user

import (
	"errors"
	"net/http"

	"github.com/examly/backend/internal/apperr"
	"github.com/examly/backend/internal/dto"
	"github.com/examly/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	submissionService service.SubmissionService
	resultService     service.ResultService
}

func NewAttemptController(submissionService service.SubmissionService, resultService service.ResultService) *AttemptController {
	return &AttemptController{
		submissionService: submissionService,
		resultService:     resultService,
	}
}

// StartAttempt opens a new attempt on an exam.
// POST /exams/:exam_id/attempts
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	examID, err := uuid.Parse(ctx.Param("exam_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid exam ID format"})
		return
	}
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.submissionService.StartAttempt(ctx.Request.Context(), examID, req.UserID)
	if err != nil {
		respondServiceError(ctx, err, "StartAttempt")
		return
	}

	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Msg("StartAttempt: failed to copy attempt to DTO")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to prepare response"})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// SaveAnswer upserts one answer while the attempt is in progress.
// PUT /attempts/:attempt_id/answers
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	attemptID, err := uuid.Parse(ctx.Param("attempt_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return
	}
	var req dto.AnswerUpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	answer, err := c.submissionService.SaveAnswer(ctx.Request.Context(), attemptID, req)
	if err != nil {
		respondServiceError(ctx, err, "SaveAnswer")
		return
	}
	ctx.JSON(http.StatusOK, answer)
}

// SubmitAttempt finalizes the attempt: grading plus plagiarism check.
// POST /attempts/:attempt_id/submit
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	attemptID, err := uuid.Parse(ctx.Param("attempt_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return
	}

	attempt, err := c.submissionService.SubmitAttempt(ctx.Request.Context(), attemptID)
	if err != nil {
		respondServiceError(ctx, err, "SubmitAttempt")
		return
	}

	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Msg("SubmitAttempt: failed to copy attempt to DTO")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to prepare response"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAttemptResult returns the graded result view. The plagiarism report
// is included only when user_id identifies a teacher.
// GET /attempts/:attempt_id/result?user_id=...
func (c *AttemptController) GetAttemptResult(ctx *gin.Context) {
	attemptID, err := uuid.Parse(ctx.Param("attempt_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return
	}
	userID, err := uuid.Parse(ctx.Query("user_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid or missing user_id query parameter"})
		return
	}

	result, err := c.resultService.GetAttemptResult(ctx.Request.Context(), attemptID, userID)
	if err != nil {
		respondServiceError(ctx, err, "GetAttemptResult")
		return
	}
	ctx.JSON(http.StatusOK, result)
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
