package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Account holds a Weibo session credential. The cookie is treated as
// an opaque string; the crawler never inspects its contents.
type Account struct {
	Name         string    `json:"name"`
	Cookie       string    `json:"cookie"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving cookies
type CredentialStore interface {
	// Store saves the credential for a given account
	Store(account *Account) error

	// Retrieve gets the credential for a specific account name
	Retrieve(name string) (*Account, error)

	// List returns all stored accounts
	List() ([]*Account, error)

	// Delete removes the credential for a specific account name
	Delete(name string) error

	// Exists checks if a credential exists for an account name
	Exists(name string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager with the available storage
// backends: system keychain first, then an encrypted file, then
// environment variables.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves the credential using the first store that accepts it
func (m *Manager) Store(account *Account) error {
	if account.Name == "" {
		return errors.New("account name is required")
	}
	if account.Cookie == "" {
		return errors.New("cookie is required")
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(account); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credential: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets the credential from the first store that has it
func (m *Manager) Retrieve(name string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(name); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("credential not found for account: %s", name)
}

// RetrieveDefault gets the environment credential if present, else the
// first stored account.
func (m *Manager) RetrieveDefault() (*Account, error) {
	if envStore, ok := m.stores[len(m.stores)-1].(*EnvironmentStore); ok {
		if account, err := envStore.Retrieve(""); err == nil && account != nil {
			return account, nil
		}
	}

	accounts, err := m.List()
	if err == nil && len(accounts) > 0 {
		return accounts[0], nil
	}

	return nil, errors.New("no credential found")
}

// List returns all stored accounts across stores, deduplicated by
// name, keeping the most recently modified version.
func (m *Manager) List() ([]*Account, error) {
	accountMap := make(map[string]*Account)

	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := accountMap[account.Name]; !ok || account.LastModified.After(existing.LastModified) {
				accountMap[account.Name] = account
			}
		}
	}

	var result []*Account
	for _, account := range accountMap {
		result = append(result, account)
	}

	return result, nil
}

// Delete removes the credential from all stores
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credential: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("credential not found for account: %s", name)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "weibocrawl")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "weibocrawl")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "weibocrawl")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "weibocrawl")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeAccount creates a copy of the account with the cookie masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	return &Account{
		Name:         account.Name,
		Cookie:       maskString(account.Cookie),
		UserAgent:    account.UserAgent,
		LastModified: account.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credential not found")
	ErrInvalidCredentials  = errors.New("invalid credential")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
