package instagram

// Authentication selects how a Session logs in. It is implemented only by
// Guest and UsernamePassword.
type Authentication interface {
	authentication()
}

// Guest obtains an anonymous CSRF token without submitting credentials
type Guest struct{}

// UsernamePassword logs into an existing account
type UsernamePassword struct {
	Username string
	Password string
}

func (Guest) authentication()            {}
func (UsernamePassword) authentication() {}

func (Guest) String() string {
	return "Guest"
}

// String never prints the password
func (u UsernamePassword) String() string {
	return "UsernamePassword{" + u.Username + "}"
}
