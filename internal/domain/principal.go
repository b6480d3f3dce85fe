package domain

// User role constants, matching the role claim issued by the auth authority.
const (
	RoleGuest    = "guest"
	RoleEmployee = "employee"
)

// Principal is the resolved identity attached to one authorized request.
// It is derived from an introspection verdict by the authorization gate,
// passed by value into the service layer, and discarded at request end.
type Principal struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// IsEmployee reports whether the principal carries the employee role.
func (p Principal) IsEmployee() bool {
	return p.Role == RoleEmployee
}
