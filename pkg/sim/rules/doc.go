// Package rules is the built-in rule library for engineering-team
// simulations: psychological safety gating, task progress, knowledge
// growth, communication, and turnover risk.
//
// Every rule here is a pure function of its parameters and the evaluation
// context. None of them consume randomness, so a simulation driven only by
// this library is fully reproducible from its initial state.
//
// The attribute names the library reads and writes are exported as Attr*
// and Global* constants; model builders seed agents with those attributes.
package rules
