// Package catalogdef is the shared foundation beneath cmd/nadam-gen: the
// human-authored message definition, its validation rules, and the
// content-hash function every generated catalog is built from. It is
// imported both by the generator tool and by the example programs,
// which need the same hashes as anything nadam-gen would have produced
// for the same names without round-tripping through a TOML file.
package catalogdef

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashLen matches nadam.HashLen; duplicated here rather than imported
// so this package has no dependency on the core library's API surface.
const HashLen = 20

var (
	ErrEmptyCatalog      = errors.New("catalogdef: no messages defined")
	ErrDuplicateName     = errors.New("catalogdef: duplicate message name")
	ErrZeroFixedSize     = errors.New("catalogdef: fixed message has total = 0")
	ErrZeroVariableSize  = errors.New("catalogdef: variable message has max = 0")
	ErrAmbiguousSizeKind = errors.New("catalogdef: message must set exactly one of total or max")
)

// Spec is one human-authored message definition, the shape a TOML
// `[[message]]` table decodes into.
type Spec struct {
	Name  string  `toml:"name"`
	Total *uint32 `toml:"total"`
	Max   *uint32 `toml:"max"`
}

// Descriptor is a fully resolved, hashed message definition — what
// nadam-gen emits, and what internal/demo builds by hand for the
// bundled example catalog.
type Descriptor struct {
	Name     string
	Variable bool
	Total    uint32
	Max      uint32
	Hash     [HashLen]byte
}

// HashName returns the 20-byte content hash of a message name. blake2b
// is used specifically because blake2b.New(20, nil) natively produces a
// 20-byte digest; nothing here truncates a wider hash by hand.
func HashName(name string) [HashLen]byte {
	h, err := blake2b.New(HashLen, nil)
	if err != nil {
		// Only non-nil for an unsupported size or a keyed hash whose key
		// is too long; HashLen=20 and a nil key are always valid.
		panic(fmt.Sprintf("catalogdef: blake2b.New(%d, nil): %v", HashLen, err))
	}
	h.Write([]byte(name))
	var out [HashLen]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Resolve validates specs and converts each into a hashed Descriptor.
// See CATALOG §5.2: an empty catalog, a zero-size fixed message, and a
// zero-max variable message are all rejected here, not in the core
// library, which accepts whatever catalog it is constructed with.
func Resolve(specs []Spec) ([]Descriptor, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(specs))
	out := make([]Descriptor, 0, len(specs))

	for _, s := range specs {
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, s.Name)
		}
		seen[s.Name] = struct{}{}

		switch {
		case s.Total != nil && s.Max != nil:
			return nil, fmt.Errorf("%w: %q", ErrAmbiguousSizeKind, s.Name)
		case s.Total != nil:
			if *s.Total == 0 {
				return nil, fmt.Errorf("%w: %q", ErrZeroFixedSize, s.Name)
			}
			out = append(out, Descriptor{Name: s.Name, Variable: false, Total: *s.Total, Hash: HashName(s.Name)})
		case s.Max != nil:
			if *s.Max == 0 {
				return nil, fmt.Errorf("%w: %q", ErrZeroVariableSize, s.Name)
			}
			out = append(out, Descriptor{Name: s.Name, Variable: true, Max: *s.Max, Hash: HashName(s.Name)})
		default:
			return nil, fmt.Errorf("%w: %q", ErrAmbiguousSizeKind, s.Name)
		}
	}

	return out, nil
}

// Fixed is a convenience constructor for Spec literals in Go code (used
// by internal/demo), mirroring catalogdef.Resolve's expectations
// without forcing callers to build pointer fields by hand.
func Fixed(name string, total uint32) Spec { return Spec{Name: name, Total: &total} }

// Variable is Fixed's counterpart for a variable-size message.
func Variable(name string, max uint32) Spec { return Spec{Name: name, Max: &max} }
