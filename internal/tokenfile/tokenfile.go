// Package tokenfile reads and writes the persisted credential file: an OAuth2
// token together with the scope set it was granted for. It is a leaf package
// with no knowledge of how tokens are obtained.
package tokenfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/oauth2"

	"github.com/tonimelisma/grabdoc/internal/atomicfile"
)

// FilePerms restricts token files to owner-only read/write.
const FilePerms = 0o600

// DirPerms keeps a freshly created token directory private.
const DirPerms = 0o700

// File is the on-disk format. Scopes records what the token was granted for
// so a later run asking for more can tell the token is insufficient.
type File struct {
	Token  *oauth2.Token `json:"token"`
	Scopes []string      `json:"scopes,omitempty"`
}

// Load reads a saved token file. Returns (nil, nil, nil) if the file does not
// exist. A file that exists but cannot be read or decoded is an error.
func Load(path string) (*oauth2.Token, []string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil //nolint:nilnil // sentinel for "not found"
	}

	if err != nil {
		return nil, nil, fmt.Errorf("tokenfile: reading %s: %w", path, err)
	}

	var tf File
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, nil, fmt.Errorf("tokenfile: decoding %s: %w", path, err)
	}

	if tf.Token == nil {
		return nil, nil, fmt.Errorf("tokenfile: %s missing token field", path)
	}

	if tf.Token.AccessToken == "" && tf.Token.RefreshToken == "" {
		return nil, nil, fmt.Errorf("tokenfile: %s has empty credentials", path)
	}

	return tf.Token, tf.Scopes, nil
}

// Save writes a token file atomically with 0600 permissions, overwriting any
// previous contents. Never logs token values.
func Save(path string, tok *oauth2.Token, scopes []string) error {
	if tok == nil {
		return fmt.Errorf("tokenfile: refusing to save nil token")
	}

	data, err := json.MarshalIndent(File{Token: tok, Scopes: scopes}, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenfile: encoding: %w", err)
	}

	if err := atomicfile.WriteFile(path, data, FilePerms, DirPerms); err != nil {
		return fmt.Errorf("tokenfile: %w", err)
	}

	return nil
}

// Remove deletes the token file. A missing file is not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokenfile: removing %s: %w", path, err)
	}

	return nil
}
