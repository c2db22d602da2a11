package auth

import (
	"os"
	"strings"
	"time"
)

// Environment variable names, tried in order
var (
	usernameEnvVars = []string{"INSTASCRAPER_USERNAME", "INSTAGRAM_USERNAME"}
	passwordEnvVars = []string{"INSTASCRAPER_PASSWORD", "INSTAGRAM_PASSWORD"}
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only.
type EnvironmentStore struct {
	lookup func(string) string
}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{lookup: os.Getenv}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment credentials. A non-empty username must
// match the environment username.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	envUser := e.first(usernameEnvVars)
	envPass := e.first(passwordEnvVars)

	if envUser == "" || envPass == "" {
		return nil, ErrCredentialsNotFound
	}
	if username != "" && username != envUser {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Username:     envUser,
		Password:     envPass,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist for username
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}

func (e *EnvironmentStore) first(names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(e.lookup(name)); v != "" {
			return v
		}
	}
	return ""
}
