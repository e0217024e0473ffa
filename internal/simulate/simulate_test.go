package simulate

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/irtcat/internal/bank"
	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/metrics"
	"github.com/abhisek/irtcat/internal/scoring"
	"github.com/abhisek/irtcat/internal/session"
)

func defaultEstimator(t *testing.T) *irt.Estimator {
	t.Helper()
	est, err := irt.NewEstimator(irt.DefaultPolicy())
	require.NoError(t, err)
	return est
}

func TestRun_RecoversAbility(t *testing.T) {
	cfg := Config{Examinees: 200, ThetaMin: -2, ThetaMax: 2, MaxItems: 20, Seed: 42}

	report, err := Run(context.Background(), bank.Sample(), defaultEstimator(t), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 200, report.Examinees)
	assert.Len(t, report.Results, 200)
	assert.Less(t, math.Abs(report.Bias), 0.2)
	assert.Less(t, report.RMSE, 0.6)
	assert.Greater(t, report.MeanStandardError, 0.0)
	assert.LessOrEqual(t, report.MeanItems, 20.0)

	for _, r := range report.Results {
		assert.GreaterOrEqual(t, r.TrueTheta, -2.0)
		assert.LessOrEqual(t, r.TrueTheta, 2.0)
		assert.GreaterOrEqual(t, r.Estimate, -4.0)
		assert.LessOrEqual(t, r.Estimate, 4.0)
		assert.NotEqual(t, session.EndNone, r.Reason)
	}
}

func TestRun_DeterministicAcrossWorkers(t *testing.T) {
	cfg := Config{Examinees: 50, ThetaMin: -3, ThetaMax: 3, MaxItems: 10, Seed: 7}
	est := defaultEstimator(t)

	cfg.Workers = 1
	serial, err := Run(context.Background(), bank.Sample(), est, cfg, nil)
	require.NoError(t, err)

	cfg.Workers = 8
	parallel, err := Run(context.Background(), bank.Sample(), est, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, serial.Results, parallel.Results)
	assert.Equal(t, serial.RMSE, parallel.RMSE)
}

func TestRun_SeedChangesOutcome(t *testing.T) {
	cfg := Config{Examinees: 20, ThetaMin: -3, ThetaMax: 3, MaxItems: 10, Seed: 1}
	est := defaultEstimator(t)

	a, err := Run(context.Background(), bank.Sample(), est, cfg, nil)
	require.NoError(t, err)
	cfg.Seed = 2
	b, err := Run(context.Background(), bank.Sample(), est, cfg, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.Results[0].TrueTheta, b.Results[0].TrueTheta)
}

func TestRun_PrecisionStops(t *testing.T) {
	y := "items:\n"
	for i := 0; i < 20; i++ {
		y += fmt.Sprintf("  - {id: q%02d, a: 2.0, b: 0.0, answer: x}\n", i)
	}
	flat, err := bank.Parse([]byte(y))
	require.NoError(t, err)

	cfg := Config{Examinees: 100, ThetaMin: -0.5, ThetaMax: 0.5, Seed: 3}
	report, err := Run(context.Background(), flat, defaultEstimator(t), cfg, nil)
	require.NoError(t, err)

	assert.Greater(t, report.PrecisionShare, 0.0)
	for _, r := range report.Results {
		if r.Reason == session.EndPrecision {
			assert.GreaterOrEqual(t, r.Items, 15)
			assert.LessOrEqual(t, r.StandardError, 0.3)
		} else {
			assert.Equal(t, session.EndPoolExhausted, r.Reason)
		}
	}
}

func TestRun_Wrapper(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	cfg := Config{Examinees: 10, ThetaMin: 0, ThetaMax: 0, MaxItems: 5, Seed: 1}

	_, err := Run(context.Background(), bank.Sample(), defaultEstimator(t), cfg, func(s scoring.Service) scoring.Service {
		return scoring.WithMetrics(s, m)
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, testutil.ToFloat64(m.Selections))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, bank.Sample(), defaultEstimator(t), DefaultConfig(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"no examinees", func(c *Config) { c.Examinees = 0 }},
		{"empty range", func(c *Config) { c.ThetaMin, c.ThetaMax = 1, -1 }},
		{"nan range", func(c *Config) { c.ThetaMin = math.NaN() }},
		{"negative max items", func(c *Config) { c.MaxItems = -1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
