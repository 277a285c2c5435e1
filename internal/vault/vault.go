// Package vault persists per-project credentials in the OS secret store.
// Entries are addressed by a derived key so the store's key namespace never
// carries a raw filesystem path.
package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/inkport/inkport/internal/project"
)

// Service is the fixed namespace all credentials live under.
const Service = "inkport"

// Kind distinguishes what a stored secret is.
type Kind string

const (
	KindPassword Kind = "password"
	KindToken    Kind = "token"
)

// ErrNotFound is returned by a SecretStore when no entry exists for a key.
var ErrNotFound = errors.New("secret not found")

// SecretStore is the opaque key-value contract the vault delegates to.
// Implementations must make Get/Set/Delete on the same key individually
// atomic.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// systemStore adapts the OS keychain to SecretStore.
type systemStore struct{}

func (systemStore) Get(service, key string) (string, error) {
	value, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return value, err
}

func (systemStore) Set(service, key, value string) error {
	return keyring.Set(service, key, value)
}

func (systemStore) Delete(service, key string) error {
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Vault scopes credentials to a project identity. Every operation re-derives
// the project root from the document path the same way the config loader
// does, so moving a project to a new path changes its credential keys.
type Vault struct {
	store   SecretStore
	service string
}

// New returns a Vault backed by the OS keychain.
func New() *Vault {
	return NewWithStore(systemStore{})
}

// NewWithStore returns a Vault backed by the given store.
func NewWithStore(store SecretStore) *Vault {
	return &Vault{store: store, service: Service}
}

// Key derives the deterministic store key for a credential. The project root
// is hashed rather than embedded so distinct roots cannot collide with each
// other or leak their layout.
func Key(projectRoot, target, profile string, kind Kind) string {
	sum := sha256.Sum256([]byte(projectRoot))
	if profile == "" {
		profile = "default"
	}
	return fmt.Sprintf("%s:%s:%s:%s", target, kind, profile, hex.EncodeToString(sum[:]))
}

// Get looks up a credential. A missing entry is reported as found=false, not
// as an error.
func (v *Vault) Get(documentPath, target, profile string, kind Kind) (string, bool, error) {
	root, err := v.resolveRoot(documentPath)
	if err != nil {
		return "", false, err
	}
	value, err := v.store.Get(v.service, Key(root, target, profile, kind))
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading credential: %w", err)
	}
	return value, true, nil
}

// Set stores a credential. Blank values are rejected; stored values are
// trimmed.
func (v *Vault) Set(documentPath, target, profile string, kind Kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("credential value is empty")
	}
	root, err := v.resolveRoot(documentPath)
	if err != nil {
		return err
	}
	key := Key(root, target, profile, kind)
	if err := v.store.Set(v.service, key, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}
	return nil
}

// Delete removes a credential. Deleting an absent entry is a success.
func (v *Vault) Delete(documentPath, target, profile string, kind Kind) error {
	root, err := v.resolveRoot(documentPath)
	if err != nil {
		return err
	}
	err = v.store.Delete(v.service, Key(root, target, profile, kind))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

func (v *Vault) resolveRoot(documentPath string) (string, error) {
	root, ok := project.FindRoot(documentPath)
	if !ok {
		return "", fmt.Errorf("no %s found in parent folders", project.ConfigFileName)
	}
	return root, nil
}
