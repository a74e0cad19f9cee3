package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/mppise/eaappreciate/internal/accomplishments"
	"github.com/mppise/eaappreciate/pkg/models"
)

type counterResponse struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// GET /api/v1/accomplishments?impactType=team|customer
func (s *Server) listAccomplishments(c echo.Context) error {
	impact := models.ImpactType(c.QueryParam("impactType"))
	if impact != "" && !impact.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown impact type")
	}

	list, err := s.store.List(c.Request().Context(), impact)
	if err != nil {
		return storageError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// GET /api/v1/accomplishments/:id
func (s *Server) getAccomplishment(c echo.Context) error {
	acc, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storageError(err)
	}
	return c.JSON(http.StatusOK, acc)
}

// POST /api/v1/accomplishments/:id/congratulate
func (s *Server) congratulate(c echo.Context) error {
	id := c.Param("id")
	count, err := s.store.IncrementCongratulations(c.Request().Context(), id)
	if err != nil {
		return storageError(err)
	}
	return c.JSON(http.StatusOK, counterResponse{ID: id, Count: count})
}

// POST /api/v1/accomplishments/:id/vote
func (s *Server) vote(c echo.Context) error {
	id := c.Param("id")
	count, err := s.store.IncrementVotes(c.Request().Context(), id)
	if err != nil {
		return storageError(err)
	}
	return c.JSON(http.StatusOK, counterResponse{ID: id, Count: count})
}

// POST /api/v1/accomplishments/:id/share
//
// With a job queue wired, generation happens in the background and the call
// returns 202. Without one, the post is generated inline and returned.
func (s *Server) share(c echo.Context) error {
	ctx := c.Request().Context()
	acc, err := s.store.Get(ctx, c.Param("id"))
	if err != nil {
		return storageError(err)
	}

	if s.queue != nil {
		if err := s.queue.QueueSharePostJob(ctx, acc.ID); err != nil {
			log.Error().Err(err).Str("accomplishment_id", acc.ID).Msg("Failed to queue share post job")
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to queue share post")
		}
		return c.JSON(http.StatusAccepted, map[string]string{
			"id":     acc.ID,
			"status": "queued",
		})
	}

	post := s.posts.GenerateShareablePost(ctx, *acc)
	if err := s.store.SetSharedPost(ctx, acc.ID, post); err != nil {
		return storageError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"id":         acc.ID,
		"sharedPost": post,
	})
}

// storageError maps storage errors to HTTP status codes.
func storageError(err error) error {
	var perr *accomplishments.PersistenceError
	switch {
	case errors.Is(err, accomplishments.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Accomplishment not found")
	case errors.As(err, &perr):
		log.Error().Err(err).Msg("Storage operation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Storage unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Request failed")
	}
}
