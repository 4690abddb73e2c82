// Package rule defines the contract that every simulation rule satisfies
// and the ordered registry that attaches rules to a model.
//
// A rule is a named, stateless policy object. On each tick the engine
// evaluates it against one or more contexts, chosen by the rule's declared
// scope: model-scope rules run once per tick against the model as a whole,
// agent-scope rules run once per agent alive at tick start. Evaluation must
// be a pure function of the context and the model state at call time. A
// rule never mutates anything directly; it returns an Outcome describing
// the changes it proposes, and the engine turns those into effects.
//
// Rules do not hold a reference to their model. The read-only model view is
// part of the Context passed to Evaluate, which keeps the relation explicit
// and non-owning and makes evaluation safely parallelizable.
package rule
