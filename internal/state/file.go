// internal/state/file.go
package state

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// FileStore keeps the snapshot in a single JSON file, written atomically with
// 0600 permissions. When a secret is configured the file content is sealed
// with nacl/secretbox so tokens are not readable at rest.
type FileStore struct {
	path   string
	secret string
}

func NewFileStore(path, secret string) *FileStore {
	return &FileStore{path: path, secret: secret}
}

func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if s.secret != "" {
		raw, err = s.open(raw)
		if err != nil {
			return nil, err
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode state file: %w", err)
	}
	return &snap, nil
}

func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if s.secret != "" {
		raw = s.seal(raw)
	}

	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create state dir: %w", err)
		}
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

func (s *FileStore) key() [32]byte {
	return sha256.Sum256([]byte(s.secret))
}

func (s *FileStore) seal(plaintext []byte) []byte {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		panic(fmt.Sprintf("state: failed to read random nonce: %v", err))
	}
	key := s.key()
	return secretbox.Seal(nonce[:], plaintext, &nonce, &key)
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("state file too short to be sealed")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	key := s.key()
	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &key)
	if !ok {
		return nil, fmt.Errorf("failed to unseal state file: wrong secret or corrupt file")
	}
	return plaintext, nil
}
