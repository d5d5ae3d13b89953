// Package auth persists the vidgo token sent to cast receivers in the system keyring.
package auth

import (
	"errors"

	"github.com/vidplay/vidplay/constant"
	"github.com/zalando/go-keyring"
)

const user = "vidgo-token"

// SetToken persists the vidgo token to the system keyring.
func SetToken(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	return keyring.Set(constant.App, user, token)
}

// GetToken retrieves the vidgo token from the system keyring.
func GetToken() (string, error) {
	return keyring.Get(constant.App, user)
}

// DeleteToken removes the vidgo token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(constant.App, user)
}

// Token is GetToken with a missing entry reported as an empty token.
// It is the token source handed to cast sessions.
func Token() (string, error) {
	token, err := GetToken()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}
