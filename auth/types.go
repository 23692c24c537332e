package auth

// Role is the account role as reported by the backend. The set is closed:
// the backend only ever issues client and admin accounts.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// HomePath returns the post-login destination for the role.
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return "/admin"
	}
	return "/mon-espace"
}

// User is the authenticated profile returned by the backend.
type User struct {
	ID    string `json:"id" msgpack:"id"`
	Email string `json:"email" msgpack:"email"`
	Name  string `json:"name" msgpack:"name"`
	Phone string `json:"phone,omitempty" msgpack:"phone"`
	Role  Role   `json:"role" msgpack:"role"`
}

// Registration is the payload for creating an account.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

// Result is the structured outcome of an authentication operation. Auth
// failures are recovered into Error, never returned as Go errors,
// so callers surface Error directly to the user.
type Result struct {
	Success bool
	User    *User
	// RedirectPath is the destination the embedder should navigate to after
	// a successful login, derived from the user's role.
	RedirectPath string
	Error        string
}
