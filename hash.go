// Package gg is a front-end library for authoring gg thunks: content-addressed,
// lazily evaluated computations scheduled and executed by a gg back-end
// (gg-init, gg-collect, gg-create-thunk-static, gg-hash-static, gg-force).
//
// A program imports gg, registers thunk functions with a Registry, and calls
// Run from main. The resulting binary runs in two roles: once as a
// coordinator that emits the initial DAG, and once per node as a worker that
// reduces one thunk to its output.
package gg

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Hash is a short, opaque, content-derived identifier: a one-character type
// tag followed by a URL-safe base64 SHA-256 digest (with '-' replaced by '.'
// and '=' padding stripped) followed by the payload length as eight lowercase
// hex digits. Hashes are the sole equality key for values and thunks.
type Hash string

// ValueTag is the type tag used for hashes computed over in-memory content.
const ValueTag = "V"

// ComputeHash implements gg_hash: sha256 -> base64url -> '.'-for-'-' ->
// strip '=' -> prefix tag -> suffix the payload length in hex.
func ComputeHash(data []byte, tag string) Hash {
	sum := sha256.Sum256(data)
	encoded := base64.URLEncoding.EncodeToString(sum[:])
	encoded = strings.ReplaceAll(encoded, "-", ".")
	encoded = strings.TrimRight(encoded, "=")
	return Hash(fmt.Sprintf("%s%s%08x", tag, encoded, len(data)))
}

// Placeholder renders the textual token the back-end substitutes with a
// resolved store path at execution time.
func Placeholder(h Hash) string {
	return fmt.Sprintf("@{GGHASH:%s}", h)
}

const (
	placeholderPrefix = "@{GGHASH:"
	placeholderSuffix = "}"
)

// ParsePlaceholder is the inverse of Placeholder. It reports false if s is
// not a well-formed placeholder.
func ParsePlaceholder(s string) (Hash, bool) {
	if !strings.HasPrefix(s, placeholderPrefix) || !strings.HasSuffix(s, placeholderSuffix) {
		return "", false
	}
	inner := s[len(placeholderPrefix) : len(s)-len(placeholderSuffix)]
	if inner == "" {
		return "", false
	}
	return Hash(inner), true
}

// TaggedOutput renders a dependency reference: "<hash>#<name>" for a named
// output, or the bare hash when name is empty (the default output).
func TaggedOutput(h Hash, name string) string {
	if name == "" {
		return string(h)
	}
	return fmt.Sprintf("%s#%s", h, name)
}

// ParseTaggedOutput is the inverse of TaggedOutput: it splits a dependency
// reference into its hash and (possibly empty) output name.
func ParseTaggedOutput(s string) (Hash, string) {
	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		return Hash(s[:idx]), s[idx+1:]
	}
	return Hash(s), ""
}
