package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Totals is a point-in-time rollup of the scoring collectors.
type Totals struct {
	Estimations  int
	NonConverged int
	Clipped      int
	Terminations int
	Selections   int
	// TiedSelections counts selections with more than one candidate at the
	// maximum information.
	TiedSelections int
	Invalid        int
}

// Gather reads the scoring collectors registered on g.
func Gather(g prometheus.Gatherer) (Totals, error) {
	families, err := g.Gather()
	if err != nil {
		return Totals{}, fmt.Errorf("gather metrics: %w", err)
	}

	var t Totals
	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_estimations_total":
			for _, m := range mf.GetMetric() {
				n := int(m.GetCounter().GetValue())
				t.Estimations += n
				if labelValue(m, "converged") == "false" {
					t.NonConverged += n
				}
			}
		case namespace + "_clipped_total":
			t.Clipped = counterSum(mf)
		case namespace + "_terminations_total":
			t.Terminations = counterSum(mf)
		case namespace + "_selections_total":
			t.Selections = counterSum(mf)
		case namespace + "_invalid_input_total":
			t.Invalid = counterSum(mf)
		case namespace + "_selection_ties":
			for _, m := range mf.GetMetric() {
				h := m.GetHistogram()
				single := uint64(0)
				for _, b := range h.GetBucket() {
					if b.GetUpperBound() == 1 {
						single = b.GetCumulativeCount()
					}
				}
				t.TiedSelections += int(h.GetSampleCount() - single)
			}
		}
	}
	return t, nil
}

func counterSum(mf *dto.MetricFamily) int {
	var sum float64
	for _, m := range mf.GetMetric() {
		sum += m.GetCounter().GetValue()
	}
	return int(sum)
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
