package auth

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can reconcile attendance
	RoleEmployee Role = "employee" // Regular employee
)

// CanReconcile reports whether the role may store reconciled summaries.
func (r Role) CanReconcile() bool {
	return r == RoleManager || r == RoleOwner
}

// Claims is the subset of access token claims the attendance API reads.
type Claims struct {
	UserID     string
	EmployeeID *string
	CompanyID  string
	Role       Role
}
