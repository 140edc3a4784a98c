package tokencache

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/go-playground/errors/v5"
	"github.com/gorilla/securecookie"
)

var _ Cache = &FileCache{}

// FileCache persists token records to a single file, encrypted and
// authenticated with securecookie so tokens are never written in the clear.
type FileCache struct {
	path string
	s    *securecookie.SecureCookie
	mem  *MemoryCache
}

// fileValueName keys the securecookie encoding; a mismatch invalidates the file.
const fileValueName = "fxadmin-tokens"

// NewFileCache opens (or creates) the cache file at path.
// cacheKey: a Base64-encoded string representing at least 32 bytes of
// cryptographically secure random data.
func NewFileCache(path, cacheKey string) (*FileCache, error) {
	key, err := base64.StdEncoding.DecodeString(cacheKey)
	if err != nil {
		return nil, errors.Wrap(err, "base64.StdEncoding.DecodeString()")
	}
	if len(key) < 32 {
		return nil, errors.New("cache key must be at least 32 bytes")
	}

	s := securecookie.New(key, key[:32])
	s.SetSerializer(securecookie.JSONEncoder{})
	s.MaxLength(0)

	c := &FileCache{
		path: path,
		s:    s,
		mem:  NewMemoryCache(),
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

// Accounts returns the cached accounts in insertion order.
func (c *FileCache) Accounts() []Account {
	return c.mem.Accounts()
}

// Get returns the record for the given account identifier.
func (c *FileCache) Get(homeID string) (*Record, bool) {
	return c.mem.Get(homeID)
}

// Put inserts or replaces the record for its account and persists the cache.
func (c *FileCache) Put(r *Record) error {
	if err := c.mem.Put(r); err != nil {
		return err
	}

	return c.save()
}

// Remove drops the record for the given account identifier and persists the
// cache.
func (c *FileCache) Remove(homeID string) error {
	if err := c.mem.Remove(homeID); err != nil {
		return err
	}

	return c.save()
}

func (c *FileCache) load() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return errors.Wrap(err, "os.ReadFile()")
	}

	var records []*Record
	if err := c.s.Decode(fileValueName, string(raw), &records); err != nil {
		// An undecodable cache is treated as empty rather than fatal: the
		// user logs in again and the file is rewritten.
		return nil
	}

	for _, r := range records {
		if err := c.mem.Put(r); err != nil {
			return err
		}
	}

	return nil
}

func (c *FileCache) save() error {
	records := make([]*Record, 0)
	for _, a := range c.mem.Accounts() {
		if r, ok := c.mem.Get(a.HomeID); ok {
			records = append(records, r)
		}
	}

	encoded, err := c.s.Encode(fileValueName, records)
	if err != nil {
		return errors.Wrap(err, "securecookie.SecureCookie.Encode()")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return errors.Wrap(err, "os.MkdirAll()")
	}
	if err := os.WriteFile(c.path, []byte(encoded), 0o600); err != nil {
		return errors.Wrap(err, "os.WriteFile()")
	}

	return nil
}
