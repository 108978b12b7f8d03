// Package lifecycle centralises the budget state machine and the role
// predicates every caller consults before mutating a budget.
//
// All functions are pure predicates over (state, role). Transitions are
// explicit requests that either succeed whole or are rejected; nothing here
// ever moves a budget on its own.
package lifecycle

import (
	"presupuesto_xpto/internal/domain/entities"
)

type edge struct {
	from entities.BudgetState
	to   entities.BudgetState
}

// transitions lists every permitted move and the roles allowed to request it.
var transitions = map[edge][]entities.Role{
	{entities.StateDraft, entities.StateSent}:        {entities.RoleOwner, entities.RoleEditor, entities.RoleAdmin},
	{entities.StateSent, entities.StateApproved}:     {entities.RoleOwner, entities.RoleAdmin},
	{entities.StateApproved, entities.StateInvoiced}: {entities.RoleAdmin},
}

// next is the linear chain behind transitions, keyed by source state.
var next = map[entities.BudgetState]entities.BudgetState{
	entities.StateDraft:    entities.StateSent,
	entities.StateSent:     entities.StateApproved,
	entities.StateApproved: entities.StateInvoiced,
}

var editors = map[entities.BudgetState][]entities.Role{
	entities.StateDraft:    {entities.RoleOwner, entities.RoleEditor, entities.RoleAdmin},
	entities.StateApproved: {entities.RoleAdmin},
}

func hasRole(roles []entities.Role, role entities.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Next returns the only state reachable from s. ok is false for INVOICED
// and unknown states.
func Next(s entities.BudgetState) (entities.BudgetState, bool) {
	to, ok := next[s]
	return to, ok
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s entities.BudgetState) bool {
	_, ok := Next(s)
	return !ok
}

// Allowed reports whether from -> to is an edge of the state machine,
// regardless of role.
func Allowed(from, to entities.BudgetState) bool {
	_, ok := transitions[edge{from, to}]
	return ok
}

// CanTransition reports whether role may move a budget from -> to.
func CanTransition(from, to entities.BudgetState, role entities.Role) bool {
	roles, ok := transitions[edge{from, to}]
	return ok && hasRole(roles, role)
}

// Transition validates a transition request and returns the new state.
// Unknown edges fail with ErrInvalidTransition; known edges requested by
// the wrong role fail with ErrForbidden.
func Transition(from, to entities.BudgetState, role entities.Role) (entities.BudgetState, error) {
	roles, ok := transitions[edge{from, to}]
	if !ok {
		return from, &entities.StateTransitionError{From: from, To: to, Role: role, Err: entities.ErrInvalidTransition}
	}
	if !hasRole(roles, role) {
		return from, &entities.StateTransitionError{From: from, To: to, Role: role, Err: entities.ErrForbidden}
	}
	return to, nil
}

// CanEdit reports whether role may change a budget's content in state s.
//
//	DRAFT     owner, editor, admin
//	SENT      nobody
//	APPROVED  admin (correction window)
//	INVOICED  nobody
func CanEdit(s entities.BudgetState, role entities.Role) bool {
	return hasRole(editors[s], role)
}

// CanDelete reports whether role may delete a budget in state s. Only
// drafts are deletable, and only by someone who may edit them.
func CanDelete(s entities.BudgetState, role entities.Role) bool {
	return s == entities.StateDraft && CanEdit(s, role)
}
