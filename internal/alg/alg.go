// Package alg defines the digest algorithms the tool can compute and the
// descriptors the hashing pipeline builds its workers from.
package alg

import (
	"crypto/md5"  // #nosec G501 -- used for file integrity digests only
	"crypto/sha1" // #nosec G505 -- used for file integrity digests only
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Spec describes one supported algorithm. Specs are immutable and shared
// read-only across goroutines.
type Spec struct {
	Key  string // canonical lowercase identifier, e.g. "sha2-256"
	Name string // display name used in headers and check files
	Size int    // digest length in bytes
	New  func() hash.Hash
}

var specs = []Spec{
	{Key: "md5", Name: "MD5", Size: 16, New: md5.New},    // #nosec G401 -- integrity only
	{Key: "sha1", Name: "SHA1", Size: 20, New: sha1.New}, // #nosec G401 -- integrity only
	{Key: "sha2-256", Name: "SHA2-256", Size: 32, New: sha256.New},
	{Key: "sha2-384", Name: "SHA2-384", Size: 48, New: sha512.New384},
	{Key: "sha2-512", Name: "SHA2-512", Size: 64, New: sha512.New},
	{Key: "sha3-256", Name: "SHA3-256", Size: 32, New: func() hash.Hash { return sha3.New256() }},
	{Key: "sha3-384", Name: "SHA3-384", Size: 48, New: func() hash.Hash { return sha3.New384() }},
	{Key: "sha3-512", Name: "SHA3-512", Size: 64, New: func() hash.Hash { return sha3.New512() }},
	{Key: "blake3", Name: "BLAKE3", Size: 32, New: func() hash.Hash { return blake3.New() }},
}

// aliases map the short SHA-2 spellings onto their canonical keys.
var aliases = map[string]string{
	"sha256": "sha2-256",
	"sha384": "sha2-384",
	"sha512": "sha2-512",
}

// FromName resolves a user-supplied algorithm name case-insensitively.
func FromName(name string) (Spec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := aliases[key]; ok {
		key = canon
	}
	for _, sp := range specs {
		if sp.Key == key {
			return sp, nil
		}
	}
	return Spec{}, fmt.Errorf("unsupported algorithm: %q", name)
}

// ParseList resolves a requested algorithm list, preserving order. The list
// must be non-empty, and two names selecting the same algorithm are rejected.
func ParseList(names []string) ([]Spec, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no algorithms requested")
	}

	out := make([]Spec, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		sp, err := FromName(name)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[sp.Key]; dup {
			return nil, fmt.Errorf("duplicate algorithm: %q and %q both select %s", prev, name, sp.Name)
		}
		seen[sp.Key] = name
		out = append(out, sp)
	}
	return out, nil
}

// Supported lists the canonical algorithm keys in display order.
func Supported() []string {
	out := make([]string, len(specs))
	for i, sp := range specs {
		out[i] = sp.Key
	}
	return out
}

// Names returns the display names of a resolved list, in order.
func Names(sps []Spec) []string {
	out := make([]string, len(sps))
	for i, sp := range sps {
		out[i] = sp.Name
	}
	return out
}
