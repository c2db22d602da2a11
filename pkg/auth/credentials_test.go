package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func envLookup(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

func TestManagerLifecycle(t *testing.T) {
	store := NewMemoryStore()
	manager := NewManagerWithStores(store)

	account := &Account{Username: "testuser", Password: "hunter2-secret"}
	where, err := manager.Store(account)
	require.NoError(t, err)
	assert.Equal(t, "memory", where)
	assert.False(t, account.LastModified.IsZero())

	retrieved, err := manager.Retrieve("testuser")
	require.NoError(t, err)
	assert.Equal(t, "testuser", retrieved.Username)
	assert.Equal(t, "hunter2-secret", retrieved.Password)

	assert.Len(t, manager.List(), 1)

	require.NoError(t, manager.Delete("testuser"))
	_, err = manager.Retrieve("testuser")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.Equal(t, 0, store.Count())
}

func TestManagerStoreValidation(t *testing.T) {
	manager := NewManagerWithStores(NewMemoryStore())

	for _, account := range []*Account{nil, {Password: "p"}, {Username: "u"}} {
		_, err := manager.Store(account)
		assert.Error(t, err)
	}
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMemoryStore()
	broken.StoreError = errors.New("keychain locked")
	working := NewMemoryStore()
	manager := NewManagerWithStores(broken, working)

	_, err := manager.Store(&Account{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, 0, broken.Count())
	assert.True(t, working.Exists("alice"))

	broken.RetrieveError = errors.New("keychain locked")
	account, err := manager.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "password1", account.Password)

	where, err := manager.Locate("alice")
	require.NoError(t, err)
	assert.Equal(t, "memory", where)
}

func TestManagerStoreAllFail(t *testing.T) {
	broken := NewMemoryStore()
	broken.StoreError = errors.New("disk full")
	manager := NewManagerWithStores(broken, &EnvironmentStore{lookup: envLookup(nil)})

	_, err := manager.Store(&Account{Username: "alice", Password: "password1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestManagerDeleteMissing(t *testing.T) {
	manager := NewManagerWithStores(NewMemoryStore())

	err := manager.Delete("ghost")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMemoryStore()
	newer := NewMemoryStore()
	now := time.Now()
	require.NoError(t, older.Store(&Account{Username: "bob", Password: "old", LastModified: now.Add(-time.Hour)}))
	require.NoError(t, newer.Store(&Account{Username: "bob", Password: "new", LastModified: now}))

	manager := NewManagerWithStores(older, newer)
	accounts := manager.List()
	require.Len(t, accounts, 1)
	assert.Equal(t, "new", accounts[0].Password)
}

func TestManagerSkipsFailingStores(t *testing.T) {
	broken := NewMemoryStore()
	broken.ListError = errors.New("keychain locked")
	working := NewMemoryStore()
	require.NoError(t, working.Store(&Account{Username: "carol", Password: "p", LastModified: time.Now()}))
	env := &EnvironmentStore{lookup: envLookup(nil)}

	manager := NewManagerWithStores(broken, working, env)
	accounts := manager.List()
	require.Len(t, accounts, 1)
	assert.Equal(t, "carol", accounts[0].Username)

	require.NoError(t, manager.Delete("carol"))
	assert.False(t, working.Exists("carol"))
}

func TestRetrieveDefault(t *testing.T) {
	t.Run("environment wins", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Store(&Account{Username: "stored", Password: "p", LastModified: time.Now()}))
		env := &EnvironmentStore{lookup: envLookup(map[string]string{
			"INSTASCRAPER_USERNAME": "envuser",
			"INSTASCRAPER_PASSWORD": "envpass",
		})}

		account, err := NewManagerWithStores(store, env).RetrieveDefault()
		require.NoError(t, err)
		assert.Equal(t, "envuser", account.Username)
	})

	t.Run("latest stored account", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Now()
		require.NoError(t, store.Store(&Account{Username: "first", Password: "p", LastModified: now.Add(-time.Minute)}))
		require.NoError(t, store.Store(&Account{Username: "second", Password: "p", LastModified: now}))
		env := &EnvironmentStore{lookup: envLookup(nil)}

		account, err := NewManagerWithStores(store, env).RetrieveDefault()
		require.NoError(t, err)
		assert.Equal(t, "second", account.Username)
	})

	t.Run("nothing stored", func(t *testing.T) {
		_, err := NewManagerWithStores(NewMemoryStore()).RetrieveDefault()
		assert.ErrorIs(t, err, ErrCredentialsNotFound)
	})
}

func TestSanitizeAccount(t *testing.T) {
	account := &Account{Username: "testuser", Password: "a-long-password"}

	sanitized := SanitizeAccount(account)
	assert.Equal(t, "testuser", sanitized.Username)
	assert.Equal(t, "a-...rd", sanitized.Password)
	assert.Equal(t, "********", SanitizeAccount(&Account{Password: "short"}).Password)
	assert.Nil(t, SanitizeAccount(nil))
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.enc")
	store, err := NewEncryptedFileStoreWithPassphrase(path, "test_passphrase_123")
	require.NoError(t, err)

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	require.NoError(t, store.Store(&Account{Username: "encrypted_user", Password: "plaintext-password"}))
	require.NoError(t, store.Store(&Account{Username: "second_user", Password: "another-password"}))

	retrieved, err := store.Retrieve("encrypted_user")
	require.NoError(t, err)
	assert.Equal(t, "plaintext-password", retrieved.Password)
	assert.True(t, store.Exists("second_user"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "plaintext-password")
	assert.NotContains(t, string(content), "encrypted_user")

	_, err = store.Retrieve("nobody")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Delete("encrypted_user"))
	require.NoError(t, store.Delete("second_user"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file should be removed with its last account")
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStoreWithPassphrase(path, "right")
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Username: "u", Password: "p"}))

	other, err := NewEncryptedFileStoreWithPassphrase(path, "wrong")
	require.NoError(t, err)
	_, err = other.Retrieve("u")
	assert.ErrorContains(t, err, "failed to decrypt")
}

func TestEncryptedFileStorePassphraseFromEnv(t *testing.T) {
	t.Setenv(passphraseEnvVar, "from-env")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Username: "u", Password: "p"}))

	reopened, err := NewEncryptedFileStoreWithPassphrase(path, "from-env")
	require.NoError(t, err)
	assert.True(t, reopened.Exists("u"))

	_, err = NewEncryptedFileStoreWithPassphrase(path, "")
	assert.Error(t, err)
}

func TestEnvironmentStore(t *testing.T) {
	tests := []struct {
		name     string
		vars     map[string]string
		username string
		want     *Account
	}{
		{
			name:     "primary names",
			vars:     map[string]string{"INSTASCRAPER_USERNAME": "alice", "INSTASCRAPER_PASSWORD": "secret"},
			username: "",
			want:     &Account{Username: "alice", Password: "secret"},
		},
		{
			name:     "fallback names",
			vars:     map[string]string{"INSTAGRAM_USERNAME": "bob", "INSTAGRAM_PASSWORD": "hunter2"},
			username: "bob",
			want:     &Account{Username: "bob", Password: "hunter2"},
		},
		{
			name: "primary overrides fallback",
			vars: map[string]string{
				"INSTASCRAPER_USERNAME": "alice", "INSTASCRAPER_PASSWORD": "secret",
				"INSTAGRAM_USERNAME": "bob", "INSTAGRAM_PASSWORD": "hunter2",
			},
			want: &Account{Username: "alice", Password: "secret"},
		},
		{
			name:     "username mismatch",
			vars:     map[string]string{"INSTASCRAPER_USERNAME": "alice", "INSTASCRAPER_PASSWORD": "secret"},
			username: "carol",
		},
		{
			name: "missing password",
			vars: map[string]string{"INSTASCRAPER_USERNAME": "alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &EnvironmentStore{lookup: envLookup(tt.vars)}

			account, err := store.Retrieve(tt.username)
			if tt.want == nil {
				assert.ErrorIs(t, err, ErrCredentialsNotFound)
				assert.False(t, store.Exists(tt.username))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Username, account.Username)
			assert.Equal(t, tt.want.Password, account.Password)
			assert.True(t, store.Exists(tt.username))
		})
	}
}

func TestEnvironmentStoreIsReadOnly(t *testing.T) {
	store := NewEnvironmentStore()

	assert.ErrorIs(t, store.Store(&Account{Username: "u"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("u"), ErrStoreUnavailable)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(&Account{Username: "alice", Password: "p1"}))
	require.NoError(t, store.Store(&Account{Username: "bob", Password: "p2"}))
	require.NoError(t, store.Store(&Account{Username: "alice", Password: "p3"}))

	account, err := store.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "p3", account.Password)

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	require.NoError(t, store.Delete("alice"))
	assert.False(t, store.Exists("alice"))
	assert.ErrorIs(t, store.Delete("alice"), ErrCredentialsNotFound)

	accounts, err = store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "bob", accounts[0].Username)

	_, err = store.Retrieve("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemoryStoreErrorInjection(t *testing.T) {
	store := NewMemoryStore()
	injected := errors.New("injected error")

	store.ListError = injected
	_, err := store.List()
	assert.ErrorIs(t, err, injected)

	store.DeleteError = injected
	assert.ErrorIs(t, store.Delete("anyone"), injected)
}
