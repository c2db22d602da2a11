package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const appName = "instascraper"

// Account holds the username/password pair used for a credentialed login
type Account struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials for a given account
	Store(account *Account) error

	// Retrieve gets credentials for a specific username
	Retrieve(username string) (*Account, error)

	// List returns all stored accounts
	List() ([]*Account, error)

	// Delete removes credentials for a specific username
	Delete(username string) error

	// Exists checks if credentials exist for a username
	Exists(username string) bool
}

// Manager tries a chain of stores. Writes go to the first store that accepts
// them; reads return the first hit.
type Manager struct {
	backends []backend
}

type backend struct {
	name  string
	store CredentialStore
}

// NewManager creates a credential manager backed by the system keychain when
// available, an encrypted file and the environment
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}

	stores = append(stores, encryptedStore, NewEnvironmentStore())
	return NewManagerWithStores(stores...), nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	m := &Manager{}
	for _, s := range stores {
		m.backends = append(m.backends, backend{name: storeName(s), store: s})
	}
	return m
}

func storeName(s CredentialStore) string {
	switch s.(type) {
	case *KeyringStore:
		return "keychain"
	case *EncryptedFileStore:
		return "encrypted file"
	case *EnvironmentStore:
		return "environment"
	case *MemoryStore:
		return "memory"
	default:
		return fmt.Sprintf("%T", s)
	}
}

// Store validates account, stamps it and saves it in the first store that
// accepts it. It returns the name of that store.
func (m *Manager) Store(account *Account) (string, error) {
	switch {
	case account == nil || account.Username == "":
		return "", errors.New("username is required")
	case account.Password == "":
		return "", errors.New("password is required")
	}
	account.LastModified = time.Now()

	var errs []error
	for _, b := range m.backends {
		err := b.store.Store(account)
		if err == nil {
			return b.name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
	}
	if len(errs) == 0 {
		return "", errors.New("no available credential stores")
	}
	return "", fmt.Errorf("failed to store credentials: %w", errors.Join(errs...))
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(username string) (*Account, error) {
	account, _, err := m.locate(username)
	return account, err
}

// Locate returns the name of the store holding username
func (m *Manager) Locate(username string) (string, error) {
	_, name, err := m.locate(username)
	return name, err
}

func (m *Manager) locate(username string) (*Account, string, error) {
	for _, b := range m.backends {
		if account, err := b.store.Retrieve(username); err == nil && account != nil {
			return account, b.name, nil
		}
	}
	return nil, "", fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
}

// RetrieveDefault returns environment credentials when set, otherwise the most
// recently modified stored account
func (m *Manager) RetrieveDefault() (*Account, error) {
	for _, b := range m.backends {
		if env, ok := b.store.(*EnvironmentStore); ok {
			if account, err := env.Retrieve(""); err == nil {
				return account, nil
			}
		}
	}

	var latest *Account
	for _, account := range m.List() {
		if latest == nil || account.LastModified.After(latest.LastModified) {
			latest = account
		}
	}
	if latest == nil {
		return nil, ErrCredentialsNotFound
	}
	return latest, nil
}

// List merges the accounts of every readable store, keeping the newest copy
// of each username. Stores that fail to list are skipped.
func (m *Manager) List() []*Account {
	newest := make(map[string]*Account)
	for _, b := range m.backends {
		accounts, err := b.store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if seen, ok := newest[account.Username]; !ok || account.LastModified.After(seen.LastModified) {
				newest[account.Username] = account
			}
		}
	}

	result := make([]*Account, 0, len(newest))
	for _, account := range newest {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result
}

// Delete removes username from every store holding it
func (m *Manager) Delete(username string) error {
	var deleted bool
	var errs []error
	for _, b := range m.backends {
		err := b.store.Delete(username)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrCredentialsNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to delete credentials: %w", errors.Join(errs...))
	}
	if !deleted {
		return fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
	}
	return nil
}

// ConfigDir returns the per-user directory holding the encrypted store,
// creating it when missing
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// SanitizeAccount creates a copy of the account with the password masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	return &Account{
		Username:     account.Username,
		Password:     maskString(account.Password),
		LastModified: account.LastModified,
	}
}

// maskString masks all but the first and last 2 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:2] + "..." + s[len(s)-2:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
