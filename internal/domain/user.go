package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is the stored registry entry. PasswordHash never leaves the
// identity store.
type Account struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
	Phone        string `json:"phone"`
	Role         Role   `json:"role"`
}

// User is the public profile handed back to callers after
// login/signup: the Account minus its credential.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

func (a Account) Profile() User {
	return User{
		Email: a.Email,
		Name:  a.Name,
		Phone: a.Phone,
		Role:  a.Role,
	}
}

// Session is the current principal plus its opaque token. The zero
// value is the anonymous session.
type Session struct {
	User  *User  `json:"user,omitempty"`
	Token string `json:"token,omitempty"`
}

func (s Session) Authenticated() bool { return s.User != nil && s.Token != "" }

// IdentityProvider is the slice of the identity store the cart depends
// on: just enough to scope data to the current principal.
type IdentityProvider interface {
	Current() (*User, bool)
}
