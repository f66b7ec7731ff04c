package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// PassphraseEnv overrides the generated passphrase
const PassphraseEnv = "IGREPORT_PASSPHRASE"

const (
	sealVersion   = 1
	kdfIterations = 100000
	keyLen        = 32
	saltLen       = 16
)

// sealedFile is the on-disk layout. Sessions holds the AES-GCM sealed JSON
// map of username to Account; byte slices travel as base64.
type sealedFile struct {
	Version  int    `json:"version"`
	Salt     []byte `json:"salt"`
	Nonce    []byte `json:"nonce"`
	Sessions []byte `json:"sessions"`
}

// FileStore keeps every account in one encrypted file. The key is derived
// with PBKDF2 from a passphrase and a salt that changes on every write.
type FileStore struct {
	path       string
	passphrase []byte
	mu         sync.Mutex
}

// NewFileStore opens the session file at path. The passphrase comes from
// IGREPORT_PASSPHRASE or a .passphrase file next to it, created on first use.
func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	pass, err := loadPassphrase(dir)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: path, passphrase: pass}, nil
}

func (f *FileStore) Put(account *Account) error {
	if account == nil || account.Username == "" {
		return ErrInvalidSession
	}
	return f.update(func(accounts map[string]*Account) error {
		accounts[account.Username] = account
		return nil
	})
}

func (f *FileStore) Get(username string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	accounts, err := f.load()
	if err != nil {
		return nil, err
	}
	if a, ok := accounts[username]; ok {
		return a, nil
	}
	return nil, ErrSessionNotFound
}

func (f *FileStore) List() ([]*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	accounts, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a)
	}
	return out, nil
}

func (f *FileStore) Remove(username string) error {
	return f.update(func(accounts map[string]*Account) error {
		if _, ok := accounts[username]; !ok {
			return ErrSessionNotFound
		}
		delete(accounts, username)
		return nil
	})
}

// update rewrites the file after fn edits the accounts. The file is removed
// once it holds none.
func (f *FileStore) update(fn func(map[string]*Account) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	accounts, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(accounts); err != nil {
		return err
	}

	if len(accounts) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}
	return f.save(accounts)
}

// load returns an empty map while the file does not exist
func (f *FileStore) load() (map[string]*Account, error) {
	accounts := make(map[string]*Account)

	content, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return accounts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sealed sealedFile
	if err := json.Unmarshal(content, &sealed); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if sealed.Version != sealVersion {
		return nil, fmt.Errorf("unsupported session file version %d", sealed.Version)
	}

	aead, err := f.aead(sealed.Salt)
	if err != nil {
		return nil, err
	}
	if len(sealed.Nonce) != aead.NonceSize() {
		return nil, errors.New("failed to decrypt session file: bad nonce")
	}
	plain, err := aead.Open(nil, sealed.Nonce, sealed.Sessions, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session file: %w", err)
	}

	if err := json.Unmarshal(plain, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse sessions: %w", err)
	}
	return accounts, nil
}

func (f *FileStore) save(accounts map[string]*Account) error {
	plain, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	sealed := sealedFile{Version: sealVersion, Salt: make([]byte, saltLen)}
	if _, err := rand.Read(sealed.Salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	aead, err := f.aead(sealed.Salt)
	if err != nil {
		return err
	}
	sealed.Nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(sealed.Nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed.Sessions = aead.Seal(nil, sealed.Nonce, plain, nil)

	content, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (f *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(f.passphrase, salt, kdfIterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func loadPassphrase(dir string) ([]byte, error) {
	if p := os.Getenv(PassphraseEnv); p != "" {
		return []byte(p), nil
	}

	path := filepath.Join(dir, ".passphrase")
	if content, err := os.ReadFile(path); err == nil && len(content) > 0 {
		return content, nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate passphrase: %w", err)
	}
	pass := []byte(base64.RawURLEncoding.EncodeToString(raw))
	if err := os.WriteFile(path, pass, 0600); err != nil {
		return nil, fmt.Errorf("failed to save passphrase: %w", err)
	}
	return pass, nil
}
