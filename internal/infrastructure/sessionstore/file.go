package sessionstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrSealedSession = errors.New("session file cannot be opened with this key")

var errCorruptSession = errors.New("session file is corrupt")

// FileStore keeps the session as a JSON object in one file. With a
// passphrase the file is sealed with NaCl secretbox; the nonce prefixes the
// ciphertext.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  *[32]byte
	log  zerolog.Logger
}

// NewFileStore returns a store backed by path. An empty passphrase leaves
// the file in plain JSON.
func NewFileStore(path, passphrase string, log zerolog.Logger) *FileStore {
	s := &FileStore{path: path, log: log}
	if passphrase != "" {
		k := sha256.Sum256([]byte(passphrase))
		s.key = &k
	}
	return s
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, _, err := s.loadForWrite()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, reset, err := s.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok && !reset {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(raw) == 0 {
		return make(map[string]string), nil
	}

	if s.key != nil {
		if raw, err = s.open(raw); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode session file: %w: %v", errCorruptSession, err)
	}
	return values, nil
}

// loadForWrite is load for Set and Remove. A file that cannot be decoded
// or opened is treated as empty and reported as reset, so the next save
// replaces it.
func (s *FileStore) loadForWrite() (map[string]string, bool, error) {
	values, err := s.load()
	if errors.Is(err, errCorruptSession) || errors.Is(err, ErrSealedSession) {
		s.log.Warn().Err(err).Str("path", s.path).Msg("unreadable session file, starting empty")
		return make(map[string]string), true, nil
	}
	return values, false, err
}

// save writes through a temp file and rename so a crash never leaves a
// half-written session behind.
func (s *FileStore) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if s.key != nil {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *FileStore) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("session nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, s.key), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrSealedSession
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, s.key)
	if !ok {
		return nil, ErrSealedSession
	}
	return plain, nil
}
