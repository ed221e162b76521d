// Package policy is the single authority on what a portal actor may see and do.
// Every function is pure: identical inputs always yield identical answers.
package policy

import (
	"strings"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// Action names a permission offered on a ticket row.
type Action string

const (
	ActionView                Action = "view"
	ActionChangeStatus        Action = "change_status"
	ActionAssign              Action = "assign"
	ActionExport              Action = "export"
	ActionViewCreatorDetails  Action = "view_creator"
	ActionViewAssigneeDetails Action = "view_assignee"
)

// CanViewCreatorDetails reports whether the creator's contact data is shown.
func CanViewCreatorDetails(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleEmployee
}

// CanViewAssigneeDetails reports whether the assigned employee is shown.
func CanViewAssigneeDetails(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// CanChangeStatus reports whether role may set the status of ticket.
// Employees lose the control once a ticket is resolved; admins never do.
func CanChangeStatus(role domain.Role, ticket *domain.Ticket) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleEmployee:
		return ticket != nil && ticket.Status != domain.TicketStatusResolved
	default:
		return false
	}
}

// CanAssign reports whether role may bind an employee to ticket.
func CanAssign(role domain.Role, ticket *domain.Ticket) bool {
	return role == domain.RoleAdmin && ticket != nil && !ticket.Assigned()
}

// CanCreateTicket reports whether role may submit new tickets.
func CanCreateTicket(role domain.Role) bool {
	return role == domain.RoleClient
}

// CanManageCompanies reports whether role may create, edit or delete companies.
func CanManageCompanies(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// CanManageUsers reports whether role may edit or delete other users.
func CanManageUsers(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// CanChangeRole reports whether the actor may change the target user's role.
// Nobody changes their own role.
func CanChangeRole(actorRole domain.Role, actorID, targetID string) bool {
	return actorRole == domain.RoleAdmin && actorID != "" && actorID != targetID
}

// CanListCompanies reports whether role may read the company list.
func CanListCompanies(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleEmployee
}

// CanExport reports whether role may download data exports.
func CanExport(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleEmployee
}

// CanViewAnalytics reports whether role may open the analytics view.
func CanViewAnalytics(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleEmployee
}

// TicketActions returns the permitted actions on ticket, in a stable order.
func TicketActions(role domain.Role, ticket *domain.Ticket) []Action {
	if !role.Valid() || ticket == nil {
		return nil
	}
	actions := []Action{ActionView}
	if CanChangeStatus(role, ticket) {
		actions = append(actions, ActionChangeStatus)
	}
	if CanAssign(role, ticket) {
		actions = append(actions, ActionAssign)
	}
	if CanExport(role) {
		actions = append(actions, ActionExport)
	}
	if CanViewCreatorDetails(role) {
		actions = append(actions, ActionViewCreatorDetails)
	}
	if CanViewAssigneeDetails(role) {
		actions = append(actions, ActionViewAssigneeDetails)
	}
	return actions
}

// Has reports whether action is in actions.
func Has(actions []Action, action Action) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// adminOnlyRoutes lists portal path prefixes restricted to admins.
var adminOnlyRoutes = []string{"/dashboard/clients", "/admin"}

// AllowedRoute reports whether role may open the portal page at path.
func AllowedRoute(role domain.Role, path string) bool {
	if !role.Valid() {
		return false
	}
	for _, prefix := range adminOnlyRoutes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return role == domain.RoleAdmin
		}
	}
	if path == "/dashboard/analytics" || path == "/dashboard/export" {
		return CanViewAnalytics(role)
	}
	return true
}
