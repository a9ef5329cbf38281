package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "weibocrawl"
	keyringPrefix  = "weibo_"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keyring-based credential store, probing
// the keychain once to confirm it works on this system.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves the credential to the system keychain
func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Name == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	key := keyringPrefix + account.Name
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// Retrieve gets the credential from the system keychain
func (k *KeyringStore) Retrieve(name string) (*Account, error) {
	if name == "" {
		return nil, ErrInvalidCredentials
	}

	key := keyringPrefix + name
	data, err := keyring.Get(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// List returns all stored accounts from the keychain. go-keyring has
// no key enumeration API, so this is always empty.
func (k *KeyringStore) List() ([]*Account, error) {
	return []*Account{}, nil
}

// Delete removes the credential from the system keychain
func (k *KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidCredentials
	}

	key := keyringPrefix + name
	if err := keyring.Delete(keyringService, key); err != nil {
		if err == keyring.ErrNotFound {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// Exists checks if a credential exists in the keychain
func (k *KeyringStore) Exists(name string) bool {
	if name == "" {
		return false
	}

	_, err := keyring.Get(keyringService, keyringPrefix+name)
	return err == nil
}
