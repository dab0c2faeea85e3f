package main

import (
	"context"
	"net/http"
	"time"

	"github.com/examly/backend/config"
	"github.com/examly/backend/database"
	teacherctrl "github.com/examly/backend/internal/controller/teacher"
	userctrl "github.com/examly/backend/internal/controller/user"
	"github.com/examly/backend/internal/logger"
	"github.com/examly/backend/internal/model"
	"github.com/examly/backend/internal/repository"
	"github.com/examly/backend/internal/service"
	"github.com/examly/backend/internal/service/similarity"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewAttemptRepository,
			repository.NewWeightsRepository,
			repository.NewPlagiarismRepository,
			repository.NewUserRepository,
		),

		// Services layer
		fx.Provide(
			service.NewGradingService,
			service.NewAttemptTextSource,
			similarity.NewTFIDF,
			similarity.NewEmbeddingSimilarity,
			service.NewPlagiarismService,
			service.NewSubmissionService,
			service.NewResultService,
		),

		// API controllers layer
		fx.Provide(
			userctrl.NewAttemptController,
			teacherctrl.NewPlagiarismController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	attemptCtrl *userctrl.AttemptController,
	plagiarismCtrl *teacherctrl.PlagiarismController,
) {
	api := router.Group("/api/v1")
	{
		// Student-facing attempt flow
		api.POST("/exams/:exam_id/attempts", attemptCtrl.StartAttempt)
		api.PUT("/attempts/:attempt_id/answers", attemptCtrl.SaveAnswer)
		api.POST("/attempts/:attempt_id/submit", attemptCtrl.SubmitAttempt)
		api.GET("/attempts/:attempt_id/result", attemptCtrl.GetAttemptResult)

		// Teacher-facing plagiarism review
		api.GET("/exams/:exam_id/plagiarism-checks", plagiarismCtrl.ListExamChecks)
		api.GET("/attempts/:attempt_id/compare/:other_attempt_id", plagiarismCtrl.GetComparison)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Exam platform API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Exam{},
		&model.Question{},
		&model.Option{},
		&model.MatchingPair{},
		&model.QuestionTypeWeight{},
		&model.Attempt{},
		&model.Answer{},
		&model.AnswerOption{},
		&model.PlagiarismCheck{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
