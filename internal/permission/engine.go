// Package permission implements the role and ownership rules that gate
// every item, user and history operation.
//
// The engine is deliberately pure: callers load the target resource
// first (fresh, never from a cache) and pass it in, so the decision and
// the data it was made on are visible at the call site and in tests.
package permission

import (
	"github.com/laveleven/labelai-backend/internal/domain"
)

// Engine evaluates access decisions for an identity against a target
// resource. The zero value is ready to use.
type Engine struct{}

// NewEngine returns a ready Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CanViewItem reports whether the caller may read the item.
// SUPER_ADMIN sees everything, ADMIN its own department, USER only
// items it created.
func (e *Engine) CanViewItem(caller domain.Identity, item *domain.Item) bool {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleAdmin:
		return caller.SameDepartment(item.DepartmentID)
	default:
		return item.CreatedBy == caller.UserID
	}
}

// CanEditItem reports whether the caller may modify the item. The rule
// currently matches view access; kept separate so the call sites name
// the operation they guard.
func (e *Engine) CanEditItem(caller domain.Identity, item *domain.Item) bool {
	return e.CanViewItem(caller, item)
}

// CanDeleteItem reports whether the caller may delete the item.
func (e *Engine) CanDeleteItem(caller domain.Identity, item *domain.Item) bool {
	return e.CanViewItem(caller, item)
}

// CanViewUser reports whether the caller may read the target account.
// ADMIN is scoped to its department; USER sees only itself.
func (e *Engine) CanViewUser(caller domain.Identity, target *domain.User) bool {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleAdmin:
		return caller.SameDepartment(target.DepartmentID)
	default:
		return target.ID == caller.UserID
	}
}

// CanEditUser reports whether the caller may modify the target account.
func (e *Engine) CanEditUser(caller domain.Identity, target *domain.User) bool {
	return e.CanViewUser(caller, target)
}

// CanDeleteUser reports whether the caller may deactivate the target
// account. No caller may delete itself, whatever the role.
func (e *Engine) CanDeleteUser(caller domain.Identity, target *domain.User) bool {
	if target.ID == caller.UserID {
		return false
	}
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleAdmin:
		return caller.SameDepartment(target.DepartmentID)
	default:
		return false
	}
}

// CanViewHistory reports whether the caller may read the item's audit
// trail. History visibility follows item visibility.
func (e *Engine) CanViewHistory(caller domain.Identity, item *domain.Item) bool {
	return e.CanViewItem(caller, item)
}

// CanAppendHistory reports whether the caller may record a change for
// the item. Writing history follows item edit access.
func (e *Engine) CanAppendHistory(caller domain.Identity, item *domain.Item) bool {
	return e.CanEditItem(caller, item)
}

// ItemsFilter yields the listing scope for the caller: unrestricted for
// SUPER_ADMIN, department-bound for ADMIN, creator-bound for USER.
// An ADMIN without a department matches nothing.
func (e *Engine) ItemsFilter(caller domain.Identity) domain.ItemFilter {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return domain.ItemFilter{}
	case domain.RoleAdmin:
		return domain.ItemFilter{DepartmentID: departmentScope(caller)}
	default:
		id := caller.UserID
		return domain.ItemFilter{CreatedBy: &id}
	}
}

// UsersFilter yields the account-listing scope for the caller.
func (e *Engine) UsersFilter(caller domain.Identity) domain.UserFilter {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return domain.UserFilter{}
	case domain.RoleAdmin:
		return domain.UserFilter{DepartmentID: departmentScope(caller)}
	default:
		id := caller.UserID
		return domain.UserFilter{UserID: &id}
	}
}

// HistoryFilter yields the cross-item history scope for the caller.
func (e *Engine) HistoryFilter(caller domain.Identity) domain.HistoryFilter {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return domain.HistoryFilter{}
	case domain.RoleAdmin:
		return domain.HistoryFilter{DepartmentID: departmentScope(caller)}
	default:
		id := caller.UserID
		return domain.HistoryFilter{CreatedBy: &id}
	}
}

// departmentScope returns the ADMIN's department, or an empty-string
// scope (matching no rows) when the account has none.
func departmentScope(caller domain.Identity) *string {
	if caller.DepartmentID != nil {
		return caller.DepartmentID
	}
	none := ""
	return &none
}
