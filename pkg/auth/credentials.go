package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"igreport/pkg/instagram"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSession   = errors.New("invalid session")
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Account is a stored cookie session. It never holds a password.
type Account struct {
	instagram.Session
	LastModified time.Time `json:"last_modified"`
}

// Masked returns a copy with the cookie values shortened for display
func (a *Account) Masked() *Account {
	if a == nil {
		return nil
	}
	masked := *a
	masked.SessionID = maskString(a.SessionID)
	masked.CSRFToken = maskString(a.CSRFToken)
	return &masked
}

// maskString keeps the first and last 4 characters
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// SessionStore persists accounts keyed by username
type SessionStore interface {
	Put(account *Account) error
	Get(username string) (*Account, error)
	List() ([]*Account, error)
	Remove(username string) error
}

// Manager saves sessions to the first store that accepts them and reads
// them back from any store
type Manager struct {
	stores []SessionStore
	now    func() time.Time
}

type managerOptions struct {
	configDir  string
	useKeyring bool
}

// ManagerOption configures NewManager
type ManagerOption func(*managerOptions)

// WithConfigDir stores the encrypted session file under dir
func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) { o.configDir = dir }
}

// WithoutKeyring skips the system keychain
func WithoutKeyring() ManagerOption {
	return func(o *managerOptions) { o.useKeyring = false }
}

// NewManager creates a manager backed by the keychain, when usable, and the
// encrypted session file
func NewManager(opts ...ManagerOption) (*Manager, error) {
	o := managerOptions{useKeyring: true}
	for _, opt := range opts {
		opt(&o)
	}

	var stores []SessionStore
	if o.useKeyring {
		if ks, err := NewKeyringStore(); err == nil {
			stores = append(stores, ks)
		}
	}

	dir := o.configDir
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
	}

	fs, err := NewFileStore(filepath.Join(dir, "sessions.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}

	return NewManagerWithStores(append(stores, fs)...), nil
}

// NewManagerWithStores creates a Manager over the given stores
func NewManagerWithStores(stores ...SessionStore) *Manager {
	return &Manager{stores: stores, now: time.Now}
}

// Save stores s under its username
func (m *Manager) Save(s *instagram.Session) error {
	switch {
	case s == nil || s.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidSession)
	case s.SessionID == "":
		return fmt.Errorf("%w: session ID is required", ErrInvalidSession)
	case s.CSRFToken == "":
		return fmt.Errorf("%w: CSRF token is required", ErrInvalidSession)
	}

	account := &Account{Session: *s, LastModified: m.now()}

	var lastErr error
	for _, store := range m.stores {
		if lastErr = store.Put(account); lastErr == nil {
			return nil
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to store session: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Lookup returns the stored account for username
func (m *Manager) Lookup(username string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Get(username); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w for user: %s", ErrSessionNotFound, username)
}

// Session resolves the session for username. An empty username picks the
// most recently saved account.
func (m *Manager) Session(username string) (*instagram.Session, error) {
	var (
		account *Account
		err     error
	)
	if username == "" {
		account, err = m.latest()
	} else {
		account, err = m.Lookup(username)
	}
	if err != nil {
		return nil, err
	}
	s := account.Session
	return &s, nil
}

func (m *Manager) latest() (*Account, error) {
	accounts, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrSessionNotFound
	}
	latest := accounts[0]
	for _, a := range accounts[1:] {
		if a.LastModified.After(latest.LastModified) {
			latest = a
		}
	}
	return latest, nil
}

// List merges every store, keeping the newest copy of each username, sorted
// by username
func (m *Manager) List() ([]*Account, error) {
	newest := make(map[string]*Account)
	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, a := range accounts {
			if seen, ok := newest[a.Username]; !ok || a.LastModified.After(seen.LastModified) {
				newest[a.Username] = a
			}
		}
	}

	result := make([]*Account, 0, len(newest))
	for _, a := range newest {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// Delete removes username from every store
func (m *Manager) Delete(username string) error {
	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		err := store.Remove(username)
		switch {
		case err == nil:
			deleted = true
		case !errors.Is(err, ErrSessionNotFound):
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete session: %w", lastErr)
	}
	return fmt.Errorf("%w for user: %s", ErrSessionNotFound, username)
}

// DeleteAll removes every stored session
func (m *Manager) DeleteAll() error {
	accounts, err := m.List()
	if err != nil {
		return err
	}
	var errs []error
	for _, a := range accounts {
		if err := m.Delete(a.Username); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ConfigDir returns the per-user igreport directory, creating it if needed
func ConfigDir() (string, error) {
	var dir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", "igreport")
	case "windows":
		dir = filepath.Join(os.Getenv("APPDATA"), "igreport")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "igreport")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config", "igreport")
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}
