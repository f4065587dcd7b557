// Package cache is a content-addressed, on-disk cache of compiled Blocks
// programs. cmd/blocksc's compile subcommand consults it before running
// the pipeline and populates it afterward so repeated compiles of an
// unchanged file skip straight to disk.
package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Entry is what a single cache slot holds: exactly what blocks.Result
// carries, encoded with CBOR using a deterministic binary encoding of a
// compiler artifact keyed by content hash.
type Entry struct {
	Words             []int32
	DataSectionSize   int64
	SymbolSectionSize int64
	Vars              map[string]int32
}

// Cache is a directory of CBOR-encoded Entry files, one per cache key.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New returns a Cache rooted at dir. dir is created on first Put, not on
// New, so constructing a Cache has no side effects.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// SetLogger attaches a structured logger used to trace hits and misses.
func (c *Cache) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

func (c *Cache) logf(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// Key derives a cache key from the compiler inputs that affect its
// output: the source text and the var_addr starting cursor (the only
// compile-time option that can change emitted addresses without changing
// the source).
//
// Unlike a keyed-PRF construction (BLAKE2s with a secret key, as used to
// keep generated IDs unlinkable), this hash
// has no adversarial requirement - it is purely a content fingerprint - so
// it uses unkeyed BLAKE2b-256 directly.
func Key(source string, varAddrStart int64) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a bad key length; nil is always
		// valid, so this is unreachable.
		panic(fmt.Sprintf("cache: blake2b.New256: %v", err))
	}
	h.Write([]byte(source))
	h.Write([]byte{0}) // separator between source and the option that follows
	h.Write([]byte(strconv.FormatInt(varAddrStart, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".cbor")
}

// Get loads the cached Entry for key, if present.
func (c *Cache) Get(key string) (*Entry, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		c.logf("cache miss", "key", key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading %s: %w", key, err)
	}

	var entry Entry
	if err := cbor.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("cache: decoding %s: %w", key, err)
	}
	c.logf("cache hit", "key", key)
	return &entry, true, nil
}

// Put persists entry under key, creating the cache directory if needed.
func (c *Cache) Put(key string, entry *Entry) error {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return fmt.Errorf("cache: building CBOR encoder: %w", err)
	}
	data, err := encMode.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: encoding entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache: creating %s: %w", c.dir, err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("cache: writing %s: %w", key, err)
	}
	c.logf("cache store", "key", key, "bytes", len(data))
	return nil
}
