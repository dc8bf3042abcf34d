package screen

import (
	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// requireAdmin reports whether user may reach any admin-gated screen
// at all: role must be SubOp or higher.
func requireAdmin(user domain.User) error {
	if !user.Role.AtLeast(domain.RoleSubOp) {
		return hobbserrors.Permission("admin access required")
	}
	return nil
}

// canEditUser reports whether admin may act on target: SubOp may only
// act on Member-or-below targets, SysOp may act on anyone.
func canEditUser(admin, target domain.User) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if admin.Role == domain.RoleSysOp {
		return nil
	}
	// admin.Role == RoleSubOp here, since requireAdmin already excluded
	// Guest/Member.
	if target.Role.AtLeast(domain.RoleSubOp) {
		return hobbserrors.Permission("SubOp may only act on Member or lower")
	}
	return nil
}

// validateRoleChange gates role changes: requires SysOp, forbids
// self-change, and forbids demoting the last remaining active SysOp.
// activeSysOps is the count of active SysOp users *before* this
// change; the repository re-checks the invariant under its own lock
// when it applies the update.
func validateRoleChange(admin, target domain.User, newRole domain.Role, activeSysOps int) error {
	if admin.Role != domain.RoleSysOp {
		return hobbserrors.Permission("role changes require SysOp")
	}
	if admin.ID == target.ID {
		return hobbserrors.ErrCannotModifySelf
	}
	if target.Role == domain.RoleSysOp && newRole != domain.RoleSysOp && activeSysOps <= 1 {
		return hobbserrors.ErrLastSysOp
	}
	return nil
}

// validateSuspend enforces the same "last SysOp" and "cannot act on
// self" rules for suspend/deactivate operations, which canEditUser
// alone doesn't cover.
func validateSuspend(admin, target domain.User, activeSysOps int) error {
	if err := canEditUser(admin, target); err != nil {
		return err
	}
	if admin.ID == target.ID {
		return hobbserrors.ErrCannotModifySelf
	}
	if target.Role == domain.RoleSysOp && activeSysOps <= 1 {
		return hobbserrors.ErrLastSysOp
	}
	return nil
}
