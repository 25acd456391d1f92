package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name profile passwords are stored under.
const KeyringService = "dbnav"

// KeyringUser is the account name a profile's password is stored under.
func (c Connection) KeyringUser() string {
	return fmt.Sprintf("%s@%s:%d", c.Username, c.Host, c.Port)
}

// ResolvePassword looks the profile's password up in the OS keyring. It
// returns an empty password when the profile does not use the keyring or no
// secret is stored.
func (c Connection) ResolvePassword() (string, error) {
	if !c.Keyring {
		return "", nil
	}
	pw, err := keyring.Get(KeyringService, c.KeyringUser())
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring lookup for %s: %w", c.Name, err)
	}
	return pw, nil
}
