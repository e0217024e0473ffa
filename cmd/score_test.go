package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/irtcat/internal/api"
	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/scoring"
)

func newTestService(t *testing.T) scoring.Service {
	t.Helper()
	est, err := irt.NewEstimator(irt.DefaultPolicy())
	require.NoError(t, err)
	return scoring.New(est, irt.NewSelector(irt.EntropySource()))
}

func TestScoreEstimate(t *testing.T) {
	raw := []byte(`{
		"responsePattern": [
			{"questionId": "q1", "a": 1.0, "b": -2.0, "isCorrect": true},
			{"questionId": "q2", "a": 1.2, "b": 0.0, "isCorrect": false}
		],
		"previousLatentTraitEstimate": 0.0
	}`)

	var out bytes.Buffer
	require.NoError(t, scoreEstimate(context.Background(), newTestService(t), raw, &out))

	var resp api.EstimateResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.InDelta(t, -0.8535252091665426, resp.LatentTraitEstimate, 1e-12)
	require.NotNil(t, resp.StandardError)
	assert.InDelta(t, 0.9404214660701228, *resp.StandardError, 1e-12)
}

func TestScoreEstimateMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"schema", `{"responsePattern": []}`},
		{"integer theta", `{"responsePattern": [{"a": 1, "b": 0, "isCorrect": true}], "previousLatentTraitEstimate": 0}`},
		{"domain", `{"responsePattern": [{"a": 0, "b": 0, "isCorrect": true}], "previousLatentTraitEstimate": 0.0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := scoreEstimate(context.Background(), newTestService(t), []byte(tt.raw), &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), api.MalformedEstimate)
			assert.Zero(t, out.Len())
		})
	}
}

func TestScoreSelect(t *testing.T) {
	raw := []byte(`{
		"questionList": [
			{"questionID": "easy", "a": 1.0, "b": -2.0},
			{"questionID": "mid", "a": 1.0, "b": 0.0},
			{"questionID": "hard", "a": 1.0, "b": 2.0}
		],
		"latentTraitEstimate": 0.0
	}`)

	var out bytes.Buffer
	require.NoError(t, scoreSelect(context.Background(), newTestService(t), raw, &out))

	var resp api.SelectResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "mid", resp.QuestionID)
	assert.Equal(t, 1, resp.ItemIndex)
	assert.InDelta(t, 0.7225, resp.MaxFisherInformation, 1e-12)
}

func TestScoreSelectDuplicateIDs(t *testing.T) {
	raw := []byte(`{"questionList": [{"questionID": "q", "a": 1, "b": 0}, {"questionID": "q", "a": 1, "b": 1}], "latentTraitEstimate": 0.0}`)

	err := scoreSelect(context.Background(), newTestService(t), raw, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, irt.ErrInvalidInput))
	assert.Contains(t, err.Error(), api.MalformedSelect)
}

func TestScoreErrorPassesThroughOtherErrors(t *testing.T) {
	err := scoreError(api.MalformedEstimate, context.Canceled)
	assert.Equal(t, context.Canceled, err)
}

func TestThetaGrid(t *testing.T) {
	got, err := thetaGrid(-1, 1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, got)

	got, err = thetaGrid(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, got)

	got, err = thetaGrid(-4, 4, 0.1)
	require.NoError(t, err)
	assert.Len(t, got, 81)

	for _, bad := range [][3]float64{{0, 1, 0}, {0, 1, -1}, {1, 0, 0.5}, {0, 100, 0.001}} {
		_, err := thetaGrid(bad[0], bad[1], bad[2])
		assert.Error(t, err, "thetaGrid(%v)", bad)
	}
}
