package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment
// variables. Read-only; Store and Delete are not supported.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets the credential from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	cookie := os.Getenv("WEIBOCRAWL_COOKIE")
	userAgent := os.Getenv("WEIBOCRAWL_USER_AGENT")

	if cookie == "" {
		return nil, ErrCredentialsNotFound
	}

	if name == "" {
		name = "default"
	}

	return &Account{
		Name:         name,
		Cookie:       cookie,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if the environment cookie is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment cookie is set
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("WEIBOCRAWL_COOKIE") != ""
}
