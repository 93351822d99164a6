package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Vault is the durable storage for the two session slots: the bearer
// token and the serialized user record. It is read once at startup,
// written on login and cleared on logout.
type Vault interface {
	Read() (token string, user string, err error)
	Write(token string, user string) error
	Clear() error
}

type fileVault struct {
	path string
}

// NewFileVault stores the session slots as a JSON file at path,
// creating parent directories on first write.
func NewFileVault(path string) Vault {
	return &fileVault{path: path}
}

type vaultFile struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

func (v *fileVault) Read() (string, string, error) {
	raw, err := os.ReadFile(v.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", nil
		}
		return "", "", err
	}
	var f vaultFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", "", err
	}
	return f.Token, f.User, nil
}

func (v *fileVault) Write(token, user string) error {
	raw, err := json.Marshal(vaultFile{Token: token, User: user})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(v.path, raw, 0o600)
}

func (v *fileVault) Clear() error {
	err := os.Remove(v.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
