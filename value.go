package gg

import (
	"fmt"
	"os"
)

// Hasher computes the content hash of a file already on disk, by shelling out
// to gg-hash-static (or serving the answer from a memoization cache). Both
// Coordinator and Worker implement it.
type Hasher interface {
	HashFile(path string) (Hash, error)
}

// Value is a polymorphic container over {bytes, path, hash}. At least one of
// the three is always present. Once saved is true the value is immutable and
// its hash is permanently valid.
type Value struct {
	bytes    []byte
	hasBytes bool

	path    string
	hasPath bool

	hash    Hash
	hasHash bool

	Saved bool
}

// BytesValue constructs an un-saved Value from in-memory content.
func BytesValue(data []byte) *Value {
	return &Value{bytes: data, hasBytes: true}
}

// StringValue constructs an un-saved Value from a UTF-8 string.
func StringValue(s string) *Value {
	return BytesValue([]byte(s))
}

// FileValue constructs a Value backed by a path on disk. saved asserts that
// the back-end store already owns this path (e.g. it was produced by a
// worker's own output slot, or it's a script/library/binary the coordinator
// is about to gg-collect itself).
func FileValue(path string, saved bool) *Value {
	return &Value{path: path, hasPath: true, Saved: saved}
}

// check panics if the invariant "at least one of {bytes, path, hash} is
// present" is violated. That invariant can only be broken by a library bug,
// never by caller input, so a panic (not an error return) is appropriate.
func (v *Value) check() {
	if !v.hasBytes && !v.hasPath && !v.hasHash {
		panic("gg: value invariant violated: no bytes, path, or hash")
	}
}

// AsBytes reads the backing path lazily and caches the result.
func (v *Value) AsBytes() ([]byte, error) {
	v.check()
	if !v.hasBytes {
		if !v.hasPath {
			panic("gg: value invariant violated: no bytes nor path")
		}
		data, err := os.ReadFile(v.path)
		if err != nil {
			return nil, fmt.Errorf("gg: read value path %s: %w", v.path, err)
		}
		v.bytes = data
		v.hasBytes = true
	}
	return v.bytes, nil
}

// AsString is AsBytes decoded as UTF-8.
func (v *Value) AsString() (string, error) {
	data, err := v.AsBytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Path returns the backing path, or "" if the value has none.
func (v *Value) Path() string {
	if !v.hasPath {
		return ""
	}
	return v.path
}

// Hash returns the value's content hash, computing and caching it on first
// use. From bytes it is gg_hash(bytes, "V"); from a path with no bytes yet,
// it delegates to the Hasher (gg-hash-static, or a memoization cache).
func (v *Value) Hash(h Hasher) (Hash, error) {
	v.check()
	if v.hasHash {
		return v.hash, nil
	}
	if v.hasPath && !v.hasBytes {
		computed, err := h.HashFile(v.path)
		if err != nil {
			return "", fmt.Errorf("gg: hash value path %s: %w", v.path, err)
		}
		v.hash = computed
		v.hasHash = true
		return v.hash, nil
	}
	if !v.hasBytes {
		panic("gg: value invariant violated: no bytes nor hash nor path")
	}
	v.hash = ComputeHash(v.bytes, ValueTag)
	v.hasHash = true
	return v.hash, nil
}

// Save persists v to the back-end store exactly once (the idempotence law
// from spec.md §8): once Saved is true this is a pure cache read. Otherwise
// it delegates to the owning Role's SaveBytes or SavePath, marks the value
// saved, and caches the returned hash.
func Save(v *Value, role Role, destPath string) (Hash, error) {
	v.check()
	if v.Saved {
		return v.Hash(role)
	}
	var (
		h   Hash
		err error
	)
	if v.hasPath {
		h, err = role.SavePath(v.path, destPath)
	} else {
		data, berr := v.AsBytes()
		if berr != nil {
			return "", berr
		}
		h, err = role.SaveBytes(data, destPath)
	}
	if err != nil {
		return "", err
	}
	v.Saved = true
	v.hash = h
	v.hasHash = true
	return h, nil
}
