package services

// Role names for callers. Identity and authentication live outside the core;
// the fronting layer resolves them and passes an explicit Caller into every
// operation.
const (
	RoleAdmin      = "admin"
	RoleOperations = "operations"
	RoleManager    = "manager"
	RoleStaff      = "staff"
)

// Caller is the authenticated identity an operation runs as. The core never
// consults ambient state for authorization; every check is a pure predicate
// over the Caller.
type Caller struct {
	UserID string
	Role   string
}

// CanManageSchedule reports whether the caller may mutate requirements and
// assignments (materialize, save, approve).
func (c Caller) CanManageSchedule() bool {
	switch c.Role {
	case RoleAdmin, RoleOperations, RoleManager:
		return true
	}
	return false
}

// CanViewAllAvailability reports whether the caller may read other users'
// availability. Regular staff only see their own.
func (c Caller) CanViewAllAvailability() bool {
	return c.CanManageSchedule()
}

// CanSubmitFor reports whether the caller may write availability for the
// given user. Everyone may write their own; managers may write on behalf of
// others.
func (c Caller) CanSubmitFor(userID string) bool {
	return c.UserID == userID || c.CanManageSchedule()
}

// CanClearMonth reports whether the caller may run the privileged bulk
// month-clear.
func (c Caller) CanClearMonth() bool {
	return c.Role == RoleAdmin || c.Role == RoleOperations
}
