package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stratum-hq/ganymede/pkg/sim/effect"
	"stratum-hq/ganymede/pkg/sim/model"
	"stratum-hq/ganymede/pkg/sim/rule"
)

// Recorder receives engine telemetry. Implemented by the metrics package;
// a nil recorder disables instrumentation.
type Recorder interface {
	// RecordTick is called once after each completed tick.
	RecordTick(report *TickReport)

	// RecordEvaluation is called once per (rule, context) evaluation.
	RecordEvaluation(ruleName string, d time.Duration, failed bool)
}

// Engine is the tick scheduler. It owns the registry of rules attached to
// its model and advances the model one tick per RunTick call.
type Engine struct {
	model    *model.Model
	registry *rule.Registry
	config   *Config
	resolver effect.Resolver
	logger   *slog.Logger

	mu       sync.Mutex // serializes RunTick; no cross-tick concurrency
	recorder Recorder
}

// New creates an engine bound to a model.
func New(m *model.Model, config *Config, logger *slog.Logger) (*Engine, error) {
	if m == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		model:    m,
		registry: rule.NewRegistry(),
		config:   config,
		resolver: effect.NewPriorityResolver(),
		logger:   logger.With("component", "sim.engine"),
	}, nil
}

// SetResolver replaces the conflict resolution policy. The default policy is
// effect.PriorityResolver; custom resolvers must be deterministic and total,
// which the engine verifies before every apply phase.
func (e *Engine) SetResolver(r effect.Resolver) {
	if r != nil {
		e.resolver = r
	}
}

// SetRecorder attaches a telemetry recorder.
func (e *Engine) SetRecorder(rec Recorder) {
	e.recorder = rec
}

// Model returns the engine's model.
func (e *Engine) Model() *model.Model { return e.model }

// Registry returns the engine's rule registry.
func (e *Engine) Registry() *rule.Registry { return e.registry }

// RegisterRule attaches a rule to the model's rule set.
func (e *Engine) RegisterRule(r rule.Rule) error {
	return e.registry.Register(r)
}

// RemoveRule detaches a rule by name. The rule is excluded from subsequent
// ticks; state applied by prior ticks is untouched.
func (e *Engine) RemoveRule(name string) error {
	return e.registry.Remove(name)
}

// CurrentTick returns the model's tick counter.
func (e *Engine) CurrentTick() uint64 {
	return e.model.Tick()
}

// job is one (rule, context) evaluation unit. Jobs are built in registry
// order, then agent order, so the job index is the deterministic collection
// order.
type job struct {
	entry rule.Entry
	ec    *rule.Context
}

// result is the evaluation result for one job.
type result struct {
	outcome rule.Outcome
	err     error
}

// RunTick executes one simulation tick and returns its report.
//
// If the context is cancelled before the apply phase, all computed effects
// are discarded and the model remains as of the previous tick. A fatal error
// (conflict policy violation, apply rejection, effect budget) likewise
// leaves the model untouched; only per-evaluation failures are tolerated
// and reported on the TickReport.
func (e *Engine) RunTick(ctx context.Context) (*TickReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	tick := e.model.Tick()

	var trace *TickTrace
	if e.config.EnableTrace {
		trace = &TickTrace{}
	}

	// Phase 1: resolve contexts. Registry and agent population are
	// snapshotted here; later mutation waits for the next tick.
	phaseStart := time.Now()
	jobs := e.resolveContexts(tick)
	trace.add("resolve", fmt.Sprintf("jobs=%d", len(jobs)), time.Since(phaseStart))

	// Phase 2: evaluate. Read-only; safe to fan out.
	phaseStart = time.Now()
	slots, err := e.evaluate(ctx, jobs)
	if err != nil {
		return nil, err
	}
	trace.add("evaluate", fmt.Sprintf("workers=%d", e.config.Workers), time.Since(phaseStart))

	// Phase 3: collect effects, stamping provenance in job order.
	phaseStart = time.Now()
	collected, evalErrs, err := e.collect(jobs, slots)
	if err != nil {
		return nil, err
	}
	trace.add("collect", fmt.Sprintf("effects=%d errors=%d", len(collected), len(evalErrs)), time.Since(phaseStart))

	// Phase 4: resolve conflicts.
	phaseStart = time.Now()
	applied, superseded, err := e.resolver.Resolve(collected)
	if err != nil {
		return nil, fmt.Errorf("conflict resolution failed at tick %d: %w", tick, err)
	}
	if err := effect.VerifyResolved(applied); err != nil {
		return nil, fmt.Errorf("conflict resolution at tick %d: %w", tick, err)
	}
	trace.add("conflicts", fmt.Sprintf("applied=%d superseded=%d", len(applied), len(superseded)), time.Since(phaseStart))

	for _, ef := range superseded {
		e.logger.Debug("effect superseded", "tick", tick, "effect", ef.String())
	}

	// Cancellation point: a tick abandoned here leaves no trace in the
	// model.
	if err := ctx.Err(); err != nil {
		e.logger.Info("tick abandoned before apply", "tick", tick, "cause", err)
		return nil, err
	}

	// Phase 5: apply. Single mutation point, all-or-nothing.
	phaseStart = time.Now()
	mutations := make([]effect.Effect, 0, len(applied))
	events := make([]effect.Effect, 0)
	for _, ef := range applied {
		if ef.IsMutation() {
			mutations = append(mutations, ef)
		} else {
			events = append(events, ef)
		}
	}
	if err := e.model.Apply(mutations); err != nil {
		e.logger.Error("apply rejected, tick rolled back", "tick", tick, "error", err)
		return nil, err
	}
	trace.add("apply", fmt.Sprintf("mutations=%d events=%d", len(mutations), len(events)), time.Since(phaseStart))

	// Phase 6: advance.
	phaseStart = time.Now()
	e.model.AdvanceTick()
	trace.add("advance", "", time.Since(phaseStart))

	report := &TickReport{
		Tick:        tick,
		Applied:     len(mutations),
		Superseded:  len(superseded),
		Events:      events,
		Errors:      evalErrs,
		Evaluations: len(jobs),
		Changed:     len(mutations) > 0,
		Duration:    time.Since(start),
		Trace:       trace,
	}

	if e.recorder != nil {
		e.recorder.RecordTick(report)
	}

	e.logger.Debug("tick complete",
		"tick", tick,
		"evaluations", report.Evaluations,
		"applied", report.Applied,
		"superseded", report.Superseded,
		"errors", len(report.Errors),
		"duration", report.Duration,
	)

	return report, nil
}

// resolveContexts maps each registered rule to its evaluation contexts for
// this tick. Agent-scope rules get one context per agent alive at tick
// start; an empty population simply yields no agent jobs.
func (e *Engine) resolveContexts(tick uint64) []job {
	entries := e.registry.Snapshot()
	agentIDs := e.model.AgentIDs()

	var jobs []job
	for _, entry := range entries {
		switch entry.Rule.Scope() {
		case rule.ScopeModel:
			jobs = append(jobs, job{
				entry: entry,
				ec:    &rule.Context{Tick: tick, Model: e.model},
			})
		case rule.ScopeAgent:
			for _, id := range agentIDs {
				view, ok := e.model.View(id)
				if !ok {
					continue
				}
				jobs = append(jobs, job{
					entry: entry,
					ec:    &rule.Context{Tick: tick, Model: e.model, Agent: view},
				})
			}
		}
	}
	return jobs
}

// evaluate runs all jobs and returns their results indexed by job. With
// Workers > 1 the jobs fan out over a pool; slot indexing keeps the outcome
// order independent of goroutine interleaving.
func (e *Engine) evaluate(ctx context.Context, jobs []job) ([]result, error) {
	slots := make([]result, len(jobs))

	if e.config.Workers == 1 || len(jobs) < 2 {
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			slots[i] = e.evaluateOne(ctx, jobs[i])
		}
		return slots, nil
	}

	workers := e.config.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				slots[i] = e.evaluateOne(ctx, jobs[i])
			}
		}()
	}

	for i := range jobs {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	return slots, ctx.Err()
}

// evaluateOne evaluates a single (rule, context) pair with the configured
// timeout. A panicking rule is reported as a failed evaluation, not a
// crashed tick.
func (e *Engine) evaluateOne(ctx context.Context, j job) (res result) {
	evalCtx, cancel := context.WithTimeout(ctx, e.config.RuleTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			res = result{err: fmt.Errorf("rule panicked: %v", r)}
		}
	}()

	start := time.Now()
	outcome, err := j.entry.Rule.Evaluate(evalCtx, j.ec)
	if err == nil && evalCtx.Err() != nil {
		// The rule returned after its deadline without observing the
		// context. Its late outcome is discarded like any other failure.
		err = fmt.Errorf("evaluation exceeded %v: %w", e.config.RuleTimeout, evalCtx.Err())
	}

	if e.recorder != nil {
		e.recorder.RecordEvaluation(j.entry.Rule.Name(), time.Since(start), err != nil)
	}

	if err != nil {
		return result{err: err}
	}
	return result{outcome: outcome}
}

// collect walks the results in job order, isolating failures and stamping
// provenance onto every proposed effect: source rule, effective priority,
// registry position, and a tick-wide emission sequence.
func (e *Engine) collect(jobs []job, slots []result) ([]effect.Effect, []*EvalError, error) {
	var (
		collected []effect.Effect
		evalErrs  []*EvalError
		seq       int
	)

	for i, res := range slots {
		j := jobs[i]
		if res.err != nil {
			evalErr := &EvalError{
				Rule:     j.entry.Rule.Name(),
				TargetID: j.ec.TargetID(),
				Cause:    res.err,
			}
			evalErrs = append(evalErrs, evalErr)
			e.logger.Warn("rule evaluation failed",
				"rule", evalErr.Rule,
				"target", evalErr.TargetID,
				"error", res.err,
			)
			continue
		}

		for _, ef := range res.outcome.Effects() {
			ef.Rule = j.entry.Rule.Name()
			ef.Priority = j.entry.EffectivePriority()
			ef.Position = j.entry.Position
			ef.Seq = seq
			seq++
			collected = append(collected, ef)

			if len(collected) > e.config.MaxEffectsPerTick {
				return nil, nil, fmt.Errorf("%w: more than %d effects collected (rule %s)",
					ErrEffectBudgetExceeded, e.config.MaxEffectsPerTick, ef.Rule)
			}
		}
	}

	return collected, evalErrs, nil
}
