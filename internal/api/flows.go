package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mppise/eaappreciate/internal/api/auth"
	"github.com/mppise/eaappreciate/internal/submission"
	"github.com/mppise/eaappreciate/pkg/models"
)

type basicFieldsRequest struct {
	OriginalStatement string `json:"originalStatement"`
	ImpactType        string `json:"impactType"`
	EmailAppreciation string `json:"emailAppreciation"`
}

type answersRequest struct {
	Answers []string `json:"answers"`
}

type flowResponse struct {
	FlowID    string   `json:"flowId"`
	State     string   `json:"state"`
	Questions []string `json:"questions,omitempty"`
	Preview   string   `json:"preview,omitempty"`
}

func flowView(f *submission.Flow) flowResponse {
	return flowResponse{
		FlowID:    f.ID(),
		State:     string(f.State()),
		Questions: f.Questions(),
		Preview:   f.Preview(),
	}
}

// POST /api/v1/flows
func (s *Server) startFlow(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "No authenticated user")
	}
	flow := s.manager.Start(user)
	return c.JSON(http.StatusCreated, flowView(flow))
}

// GET /api/v1/flows/:id
func (s *Server) getFlow(c echo.Context) error {
	flow, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return flowError(err)
	}
	return c.JSON(http.StatusOK, flowView(flow))
}

// POST /api/v1/flows/:id/questions
func (s *Server) generateQuestions(c echo.Context) error {
	flow, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return flowError(err)
	}

	var req basicFieldsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	flow.SetBasicFields(req.OriginalStatement, models.ImpactType(req.ImpactType), req.EmailAppreciation)

	if _, err := flow.GenerateQuestions(c.Request().Context()); err != nil {
		return flowError(err)
	}
	return c.JSON(http.StatusOK, flowView(flow))
}

// POST /api/v1/flows/:id/answers
func (s *Server) setAnswers(c echo.Context) error {
	flow, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return flowError(err)
	}

	var req answersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	flow.SetAnswers(req.Answers)
	return c.JSON(http.StatusOK, flowView(flow))
}

// POST /api/v1/flows/:id/statement
func (s *Server) generateStatement(c echo.Context) error {
	flow, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return flowError(err)
	}
	if _, err := flow.GenerateStatement(c.Request().Context()); err != nil {
		return flowError(err)
	}
	return c.JSON(http.StatusOK, flowView(flow))
}

// POST /api/v1/flows/:id/regenerate
func (s *Server) regenerateStatement(c echo.Context) error {
	flow, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return flowError(err)
	}
	if _, err := flow.Regenerate(c.Request().Context()); err != nil {
		return flowError(err)
	}
	return c.JSON(http.StatusOK, flowView(flow))
}

// POST /api/v1/flows/:id/back
func (s *Server) navigateBack(c echo.Context) error {
	flow, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return flowError(err)
	}
	if err := flow.Back(); err != nil {
		return flowError(err)
	}
	return c.JSON(http.StatusOK, flowView(flow))
}

// POST /api/v1/flows/:id/submit
func (s *Server) submitFlow(c echo.Context) error {
	flow, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return flowError(err)
	}
	acc, err := flow.Submit(c.Request().Context())
	if err != nil {
		return flowError(err)
	}
	return c.JSON(http.StatusCreated, acc)
}

// flowError maps flow errors to HTTP status codes.
func flowError(err error) error {
	var verr *submission.ValidationError
	var serr *submission.StateError

	switch {
	case errors.Is(err, submission.ErrFlowNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Flow not found")
	case errors.Is(err, submission.ErrRequestInFlight):
		return echo.NewHTTPError(http.StatusTooManyRequests, "A request is already in progress for this flow")
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message": "Validation failed",
			"fields":  verr.Fields,
		})
	case errors.As(err, &serr):
		return echo.NewHTTPError(http.StatusConflict, serr.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Request failed")
	}
}
