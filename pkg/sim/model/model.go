package model

import (
	"fmt"
	"sort"
	"sync"

	"stratum-hq/ganymede/pkg/sim/effect"
)

// Reader is the read-only view of a model handed to rules during the
// evaluation phase. All methods are safe for concurrent use.
type Reader interface {
	// Tick returns the current tick number.
	Tick() uint64

	// AgentIDs returns all agent IDs in insertion order.
	AgentIDs() []string

	// AgentCount returns the number of agents.
	AgentCount() int

	// View returns the read view for one agent, or (nil, false) when the
	// agent does not exist.
	View(id string) (*AgentView, bool)

	// Global returns a global attribute, or (nil, false) when absent.
	Global(name string) (any, bool)

	// GlobalFloat returns a global attribute as float64. A missing or
	// non-numeric value is an error.
	GlobalFloat(name string) (float64, error)
}

// Model owns the agent population and global state. It is mutated only by
// Apply (called by the tick scheduler) and by the population management
// methods between ticks.
type Model struct {
	mu      sync.RWMutex
	tick    uint64
	order   []string
	agents  map[string]*Agent
	globals map[string]any
}

// New creates an empty model.
func New() *Model {
	return &Model{
		agents:  make(map[string]*Agent),
		globals: make(map[string]any),
	}
}

// Tick returns the current tick number.
func (m *Model) Tick() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tick
}

// AdvanceTick increments the tick counter. Called by the tick scheduler in
// its advance phase, never by rules.
func (m *Model) AdvanceTick() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick++
	return m.tick
}

// AddAgent adds an agent to the population. Agents added while a tick is in
// flight are not evaluated until the next tick because agent-scope contexts
// are snapshotted at tick start.
func (m *Model) AddAgent(a *Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.agents[a.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAgentExists, a.ID)
	}
	m.agents[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

// RemoveAgent removes an agent from the population.
func (m *Model) RemoveAgent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.agents[id]; !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	delete(m.agents, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// AgentIDs returns all agent IDs in insertion order. The returned slice is a
// copy and is stable for the duration of a tick.
func (m *Model) AgentIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// AgentCount returns the number of agents.
func (m *Model) AgentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

// View returns the read view for one agent.
func (m *Model) View(id string) (*AgentView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.agents[id]
	if !ok {
		return nil, false
	}
	return &AgentView{id: a.ID, attrs: a.Attrs}, true
}

// GetAttr returns one attribute of one agent.
func (m *Model) GetAttr(id, name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.agents[id]
	if !ok {
		return nil, false
	}
	val, ok := a.Attrs[name]
	return val, ok
}

// SetGlobal sets a global attribute directly. Intended for model setup; once
// the simulation runs, globals change only through applied effects.
func (m *Model) SetGlobal(name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globals[name] = value
}

// Global returns a global attribute.
func (m *Model) Global(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.globals[name]
	return val, ok
}

// GlobalFloat returns a global attribute as float64.
func (m *Model) GlobalFloat(name string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.globals[name]
	if !ok {
		return 0, &MissingAttributeError{Attribute: name}
	}
	f, ok := asFloat(val)
	if !ok {
		return 0, fmt.Errorf("global attribute %q: value %v (%T) is not numeric", name, val, val)
	}
	return f, nil
}

// GlobalNames returns all global attribute names, sorted.
func (m *Model) GlobalNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.globals))
	for name := range m.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply validates and applies a finalized effect set. Validation of every
// effect runs before any mutation: if any effect is invalid, Apply returns
// an ApplyError and the model is unchanged (all-or-nothing apply).
//
// Event effects are skipped here; they carry no state mutation.
func (m *Model) Apply(effects []effect.Effect) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ef := range effects {
		if err := m.validate(ef); err != nil {
			return err
		}
	}

	for _, ef := range effects {
		switch ef.Kind {
		case effect.KindSetAgentAttr:
			m.agents[ef.TargetID].Attrs[ef.Attribute] = ef.Value
		case effect.KindSetGlobal:
			m.globals[ef.Attribute] = ef.Value
		}
	}
	return nil
}

// validate checks one effect against the current state. Caller holds the
// write lock.
func (m *Model) validate(ef effect.Effect) error {
	switch ef.Kind {
	case effect.KindSetAgentAttr:
		if ef.Attribute == "" {
			return &ApplyError{TargetID: ef.TargetID, Rule: ef.Rule, Cause: fmt.Errorf("empty attribute name")}
		}
		if _, ok := m.agents[ef.TargetID]; !ok {
			return &ApplyError{TargetID: ef.TargetID, Attribute: ef.Attribute, Rule: ef.Rule, Cause: ErrAgentNotFound}
		}
	case effect.KindSetGlobal:
		if ef.Attribute == "" {
			return &ApplyError{Rule: ef.Rule, Cause: fmt.Errorf("empty attribute name")}
		}
	case effect.KindEvent:
		// Observational only.
	default:
		return &ApplyError{TargetID: ef.TargetID, Attribute: ef.Attribute, Rule: ef.Rule,
			Cause: fmt.Errorf("unknown effect kind %q", ef.Kind)}
	}
	return nil
}

// Snapshot returns a deep copy of the model state. Used for checkpointing
// and for tests asserting that evaluation never mutates state.
func (m *Model) Snapshot() *State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := &State{
		Tick:    m.tick,
		Globals: make(map[string]any, len(m.globals)),
	}
	for k, v := range m.globals {
		st.Globals[k] = v
	}
	for _, id := range m.order {
		st.Agents = append(st.Agents, m.agents[id].clone())
	}
	return st
}

// Restore replaces the model state with a snapshot.
func (m *Model) Restore(st *State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick = st.Tick
	m.order = m.order[:0]
	m.agents = make(map[string]*Agent, len(st.Agents))
	for _, a := range st.Agents {
		copied := a.clone()
		m.agents[copied.ID] = copied
		m.order = append(m.order, copied.ID)
	}
	m.globals = make(map[string]any, len(st.Globals))
	for k, v := range st.Globals {
		m.globals[k] = v
	}
}

// State is a deep copy of a model at one point in time. Agents preserve
// insertion order.
type State struct {
	Tick    uint64
	Agents  []*Agent
	Globals map[string]any
}
