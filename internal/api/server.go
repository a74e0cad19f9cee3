// Package api exposes the accomplishment submission flow and the shared
// feed over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/mppise/eaappreciate/internal/api/auth"
	"github.com/mppise/eaappreciate/internal/submission"
	"github.com/mppise/eaappreciate/pkg/models"
)

// Store is the persistence surface the handlers need.
type Store interface {
	Get(ctx context.Context, id string) (*models.Accomplishment, error)
	List(ctx context.Context, impactType models.ImpactType) ([]models.Accomplishment, error)
	IncrementCongratulations(ctx context.Context, id string) (int, error)
	IncrementVotes(ctx context.Context, id string) (int, error)
	SetSharedPost(ctx context.Context, id, post string) error
}

// SharePoster queues background share-post generation.
type SharePoster interface {
	QueueSharePostJob(ctx context.Context, accomplishmentID string) error
}

// PostGenerator produces a shareable post inline when no queue is wired.
type PostGenerator interface {
	GenerateShareablePost(ctx context.Context, acc models.Accomplishment) string
}

// Server represents the API server
type Server struct {
	echo      *echo.Echo
	port      int
	jwtSecret string

	manager *submission.Manager
	store   Store
	queue   SharePoster
	posts   PostGenerator
}

// NewServer creates a new API server. queue may be nil; share posts are then
// generated synchronously on request.
func NewServer(port int, jwtSecret string, manager *submission.Manager, store Store, queue SharePoster, posts PostGenerator) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:      e,
		port:      port,
		jwtSecret: jwtSecret,
		manager:   manager,
		store:     store,
		queue:     queue,
		posts:     posts,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	v1 := s.echo.Group("/api/v1", auth.RequireAuth(s.jwtSecret))

	// Submission flow endpoints
	v1.POST("/flows", s.startFlow)
	v1.GET("/flows/:id", s.getFlow)
	v1.POST("/flows/:id/questions", s.generateQuestions)
	v1.POST("/flows/:id/answers", s.setAnswers)
	v1.POST("/flows/:id/statement", s.generateStatement)
	v1.POST("/flows/:id/regenerate", s.regenerateStatement)
	v1.POST("/flows/:id/back", s.navigateBack)
	v1.POST("/flows/:id/submit", s.submitFlow)

	// Feed endpoints
	v1.GET("/accomplishments", s.listAccomplishments)
	v1.GET("/accomplishments/:id", s.getAccomplishment)

	reactions := v1.Group("", reactionRateLimit())
	reactions.POST("/accomplishments/:id/congratulate", s.congratulate)
	reactions.POST("/accomplishments/:id/vote", s.vote)
	reactions.POST("/accomplishments/:id/share", s.share)
}

// Start begins the API server and blocks until interrupted.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
