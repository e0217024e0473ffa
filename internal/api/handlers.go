package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/scoring"
)

// handleEstimate updates the latent trait estimate from a response pattern.
func (s *Server) handleEstimate(c echo.Context) error {
	var req EstimateRequest
	if err := s.decode(c, func(raw []byte) (err error) {
		req, err = ParseEstimateRequest(raw)
		return err
	}); err != nil {
		return err
	}

	est, err := s.svc.Estimate(s.scoringContext(c), req.ResponsePattern, req.PreviousLatentTraitEstimate)
	if err != nil {
		return s.scoringError("estimate", MalformedEstimate, err)
	}

	s.logger.Debug("estimated latent trait",
		zap.Int("items", est.ItemCount),
		zap.Float64("theta", est.Theta),
		zap.Float64("standard_error", est.StandardError),
		zap.Int("iterations", est.Iterations),
		zap.Bool("converged", est.Converged),
		zap.Bool("end", est.End),
	)

	return c.JSON(http.StatusOK, NewEstimateResponse(est))
}

// handleSelect picks the most informative question from the list.
func (s *Server) handleSelect(c echo.Context) error {
	var req SelectRequest
	if err := s.decode(c, func(raw []byte) (err error) {
		req, err = ParseSelectRequest(raw)
		return err
	}); err != nil {
		return err
	}

	sel, err := s.svc.Select(s.scoringContext(c), req.QuestionList, req.LatentTraitEstimate)
	if err != nil {
		return s.scoringError("select", MalformedSelect, err)
	}

	s.logger.Debug("selected question",
		zap.String("question_id", sel.QuestionID),
		zap.Int("index", sel.Index),
		zap.Float64("max_information", sel.MaxInformation),
		zap.Int("ties", sel.Ties),
	)

	return c.JSON(http.StatusOK, NewSelectResponse(sel))
}

// decode reads the request body and hands it to parse.
func (s *Server) decode(c echo.Context, parse func([]byte) error) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
	}

	if err := parse(body); err != nil {
		s.logger.Warn("malformed request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// scoringContext carries the echo request id into the scoring call.
func (s *Server) scoringContext(c echo.Context) context.Context {
	id := c.Response().Header().Get(echo.HeaderXRequestID)
	return scoring.WithRequestID(c.Request().Context(), id)
}

// scoringError maps scoring failures to HTTP errors.
func (s *Server) scoringError(op, malformed string, err error) error {
	var ie *irt.InvalidInputError
	if errors.As(err, &ie) {
		s.logger.Warn("invalid scoring input", zap.String("operation", op), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, malformed+": "+ie.Error())
	}
	s.logger.Error("scoring failed", zap.String("operation", op), zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
