package entities

import "strings"

// BudgetState is the lifecycle state of a budget (presupuesto).
//
// The progression is linear and forward-only:
//
//	DRAFT -> SENT -> APPROVED -> INVOICED
//
// INVOICED is terminal.
type BudgetState string

const (
	StateDraft    BudgetState = "DRAFT"
	StateSent     BudgetState = "SENT"
	StateApproved BudgetState = "APPROVED"
	StateInvoiced BudgetState = "INVOICED"
)

// ParseState accepts any casing and surrounding blanks.
func ParseState(s string) (BudgetState, bool) {
	st := BudgetState(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StateDraft, StateSent, StateApproved, StateInvoiced:
		return st, true
	}
	return "", false
}

// Role is the authorization role an actor holds towards a budget.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseRole maps unknown or empty values to RoleViewer.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return r
	}
	return RoleViewer
}

// Actor is the identity performing a request, as given by the
// authorization context.
type Actor struct {
	ID   string
	Role Role
}

// RoleFor resolves the role the actor holds on a budget owned by ownerID.
// Admin wins over ownership; ownership wins over the declared role.
func (a Actor) RoleFor(ownerID string) Role {
	if a.Role == RoleAdmin {
		return RoleAdmin
	}
	if a.ID != "" && a.ID == ownerID {
		return RoleOwner
	}
	if a.Role == RoleOwner {
		// Claiming ownership of someone else's budget grants nothing extra.
		return RoleViewer
	}
	if a.Role == "" {
		return RoleViewer
	}
	return a.Role
}
