package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"stratum-hq/ganymede/pkg/config"
	"stratum-hq/ganymede/pkg/sim/engine"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	cfg := &config.MetricsConfig{Enabled: true}
	return NewCollector(cfg, prometheus.NewRegistry())
}

func gatherMetric(t *testing.T, c *Collector, name string) *dto.MetricFamily {
	t.Helper()
	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestCollector_RecordTick(t *testing.T) {
	c := newTestCollector(t)

	c.RecordTick(&engine.TickReport{
		Tick:       1,
		Applied:    5,
		Superseded: 2,
		Errors:     []*engine.EvalError{{Rule: "broken"}},
		Changed:    true,
		Duration:   2 * time.Millisecond,
	})
	c.RecordTick(&engine.TickReport{Tick: 2, Duration: time.Millisecond})

	ticks := gatherMetric(t, c, "stratum_ganymede_ticks_total")
	if ticks == nil {
		t.Fatal("ticks_total not registered")
	}
	counts := map[string]float64{}
	for _, m := range ticks.GetMetric() {
		counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	if counts["changed"] != 1 || counts["quiescent"] != 1 {
		t.Errorf("tick counts = %v", counts)
	}

	effects := gatherMetric(t, c, "stratum_ganymede_effects_total")
	if effects == nil {
		t.Fatal("effects_total not registered")
	}
	for _, m := range effects.GetMetric() {
		switch m.GetLabel()[0].GetValue() {
		case "applied":
			if m.GetCounter().GetValue() != 5 {
				t.Errorf("applied = %v, want 5", m.GetCounter().GetValue())
			}
		case "superseded":
			if m.GetCounter().GetValue() != 2 {
				t.Errorf("superseded = %v, want 2", m.GetCounter().GetValue())
			}
		}
	}

	errs := gatherMetric(t, c, "stratum_ganymede_eval_errors_total")
	if errs == nil || errs.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Error("eval_errors_total should be 1")
	}
}

func TestCollector_RecordEvaluation(t *testing.T) {
	c := newTestCollector(t)

	c.RecordEvaluation("task-progress", 50*time.Microsecond, false)
	c.RecordEvaluation("task-progress", 80*time.Microsecond, false)
	c.RecordEvaluation("task-progress", 10*time.Microsecond, true)

	evals := gatherMetric(t, c, "stratum_ganymede_rule_evaluations_total")
	if evals == nil {
		t.Fatal("rule_evaluations_total not registered")
	}
	counts := map[string]float64{}
	for _, m := range evals.GetMetric() {
		var rule, status string
		for _, l := range m.GetLabel() {
			switch l.GetName() {
			case "rule":
				rule = l.GetValue()
			case "status":
				status = l.GetValue()
			}
		}
		counts[rule+"/"+status] = m.GetCounter().GetValue()
	}
	if counts["task-progress/success"] != 2 || counts["task-progress/error"] != 1 {
		t.Errorf("evaluation counts = %v", counts)
	}
}

func TestCollector_DisabledIsNoop(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: false}
	c := NewCollector(cfg, prometheus.NewRegistry())

	c.RecordTick(&engine.TickReport{Applied: 3, Changed: true})
	c.RecordEvaluation("rule", time.Millisecond, false)
	c.SetAgentCount(10)

	ticks := gatherMetric(t, c, "stratum_ganymede_ticks_total")
	if ticks != nil && len(ticks.GetMetric()) > 0 {
		t.Error("disabled collector should not record")
	}
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector(t)
	c.SetAgentCount(12)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body := make([]byte, 64*1024)
	n, _ := resp.Body.Read(body)
	out := string(body[:n])

	if !strings.Contains(out, "stratum_ganymede_agents 12") {
		t.Errorf("agents gauge missing from exposition:\n%s", out)
	}
}
