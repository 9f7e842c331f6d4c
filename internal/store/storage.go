package store

import (
	"errors"
	"net/url"
)

// ErrQuotaExceeded is returned when a write would take a profile past its
// byte quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Storage is a persistent string key-value store.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// QuotaSetter is implemented by backends that can check the total size of
// every key under prefix and write key in one step.
type QuotaSetter interface {
	SetWithQuota(key, value, prefix string, quotaBytes int) error
}

type namespaced struct {
	inner  Storage
	prefix string
	quota  int
}

// Namespaced returns a Storage whose keys are prefixed with ns, so several
// profiles can share one backend without seeing each other's keys.
func Namespaced(inner Storage, ns string) Storage {
	return &namespaced{inner: inner, prefix: ns}
}

func (n *namespaced) Get(key string) (string, bool, error) { return n.inner.Get(n.prefix + key) }
func (n *namespaced) Delete(key string) error             { return n.inner.Delete(n.prefix + key) }

// Set enforces the namespace quota when the backend supports it. Backends
// without QuotaSetter (Redis) write unchecked.
func (n *namespaced) Set(key, value string) error {
	if qs, ok := n.inner.(QuotaSetter); ok && n.quota > 0 {
		return qs.SetWithQuota(n.prefix+key, value, n.prefix, n.quota)
	}
	return n.inner.Set(n.prefix+key, value)
}

// ProfileNamespace is the key prefix used for a profile's keys. The id is
// escaped so no profile's prefix is a prefix of another's.
func ProfileNamespace(profileID string) string {
	return "profile:" + url.QueryEscape(profileID) + ":"
}

// Profiles hands out per-profile views of one backend. A positive quota caps
// each profile's total key and value bytes on its own.
type Profiles struct {
	inner Storage
	quota int
}

func NewProfiles(inner Storage, quotaBytes int) *Profiles {
	return &Profiles{inner: inner, quota: quotaBytes}
}

// For returns profileID's view.
func (p *Profiles) For(profileID string) Storage {
	return &namespaced{inner: p.inner, prefix: ProfileNamespace(profileID), quota: p.quota}
}
