// Package auth signs the user in with Google and provides the identity used to key
// watch progress and authorize Drive exports.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var ErrNotSignedIn = errors.New("auth: not signed in (run `deepfocus login`)")

// Credentials is the token file written by `deepfocus login`.
type Credentials struct {
	Token  *oauth2.Token `json:"token"`
	UserID string        `json:"user_id"`
	Email  string        `json:"email"`
}

// LoadCredentials reads path. A missing file returns ErrNotSignedIn.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}

	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.Token == nil || c.UserID == "" {
		return nil, ErrNotSignedIn
	}
	return &c, nil
}

// SaveCredentials writes c to path readable only by the current user.
func SaveCredentials(path string, c *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// RemoveCredentials deletes the token file. It is not an error if none exists.
func RemoveCredentials(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
