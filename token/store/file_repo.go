package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	errs "github.com/jalsoochak/go-admin-console/internal/errors"
)

var _ Repo = (*FileRepo)(nil)

// FileRepo stores the token pair as a single JSON file, typically under
// ~/.config/jalsoochak/token.json. Writes go through a temp file and rename so
// the pair is replaced atomically.
type FileRepo struct {
	path string
}

// NewFileRepo creates a file-backed token repo at the given path.
func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

// DefaultPath returns the conventional token cache location in the user's
// config directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Wrapf(err, "[store.DefaultPath] failed to resolve home directory")
	}
	return filepath.Join(home, ".config", "jalsoochak", "token.json"), nil
}

func (r *FileRepo) Save(accessToken, refreshToken string) error {
	b, err := json.Marshal(TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
	if err != nil {
		return errs.Wrapf(err, "[FileRepo.Save] failed to encode token pair")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errs.Wrapf(err, "[FileRepo.Save] failed to create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "token-*.json")
	if err != nil {
		return errs.Wrapf(err, "[FileRepo.Save] failed to create temp file")
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errs.Wrapf(err, "[FileRepo.Save] failed to set permissions")
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errs.Wrapf(err, "[FileRepo.Save] failed to write token pair")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errs.Wrapf(err, "[FileRepo.Save] failed to close temp file")
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return errs.Wrapf(err, "[FileRepo.Save] failed to replace %s", r.path)
	}
	return nil
}

func (r *FileRepo) Load() (*TokenPair, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrapf(err, "[FileRepo.Load] failed to read %s", r.path)
	}

	var pair TokenPair
	if err := json.Unmarshal(b, &pair); err != nil {
		return nil, errs.Wrapf(err, "[FileRepo.Load] failed to parse %s", r.path)
	}
	return &pair, nil
}

func (r *FileRepo) Clear() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errs.Wrapf(err, "[FileRepo.Clear] failed to remove %s", r.path)
	}
	return nil
}
