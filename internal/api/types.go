package api

import (
	"math"

	"github.com/abhisek/irtcat/internal/irt"
)

const successMessage = "Success"

// Messages returned for request bodies that fail validation.
const (
	MalformedEstimate = "Malformed Input. Requires responsePattern as [Response]! and previousLatentTraitEstimate as Float"
	MalformedSelect   = "Malformed Input. Requires questionList as [Question]! and latentTraitEstimate as Float"
)

// EstimateRequest is the request body for POST /api/v1/estimate.
type EstimateRequest struct {
	ResponsePattern             []irt.Response `json:"responsePattern"`
	PreviousLatentTraitEstimate float64        `json:"previousLatentTraitEstimate"`
}

// EstimateResponse is the response body for POST /api/v1/estimate.
type EstimateResponse struct {
	LatentTraitEstimate float64 `json:"latentTraitEstimate"`
	RawEstimate         float64 `json:"rawEstimate"`
	IsClipped           bool    `json:"isClipped"`
	// StandardError is null when the information sum underflows.
	StandardError *float64 `json:"standardError"`
	NoIter        int      `json:"noIter"`
	IsConverged   bool     `json:"isConverged"`
	IsEnd         bool     `json:"isEnd"`
}

// NewEstimateResponse converts an estimation to its wire form.
func NewEstimateResponse(est irt.Estimation) EstimateResponse {
	resp := EstimateResponse{
		LatentTraitEstimate: est.Theta,
		RawEstimate:         est.RawTheta,
		IsClipped:           est.Clipped,
		NoIter:              est.Iterations,
		IsConverged:         est.Converged,
		IsEnd:               est.End,
	}
	if se := est.StandardError; !math.IsInf(se, 0) && !math.IsNaN(se) {
		resp.StandardError = &se
	}
	return resp
}

// SelectRequest is the request body for POST /api/v1/select.
type SelectRequest struct {
	QuestionList        []irt.Question `json:"questionList"`
	LatentTraitEstimate float64        `json:"latentTraitEstimate"`
}

// SelectResponse is the response body for POST /api/v1/select.
type SelectResponse struct {
	Message              string  `json:"message"`
	QuestionID           string  `json:"questionID"`
	ItemIndex            int     `json:"itemIndex"`
	MaxFisherInformation float64 `json:"maxFisherInformation"`
}

// NewSelectResponse converts a selection to its wire form.
func NewSelectResponse(sel irt.Selection) SelectResponse {
	return SelectResponse{
		Message:              successMessage,
		QuestionID:           sel.QuestionID,
		ItemIndex:            sel.Index,
		MaxFisherInformation: sel.MaxInformation,
	}
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
