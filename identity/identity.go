// Package identity defines the canonical representation of "which profile" a
// vote or lookup refers to. Profiles come from two sources: rows in the
// persistent store (addressed by UUID) and the code-shipped seed dataset
// (addressed by a deterministic hash of the horse's name). Both collapse into
// one normalized key so votes and shareable URLs never fragment across
// storage tiers.
package identity

import (
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Source distinguishes the storage tier an identifier refers to
type Source string

const (
	SourceDB   Source = "db"
	SourceSeed Source = "seed"
)

var (
	ErrInvalidIdentifier = errors.New("invalid profile identifier")
	ErrSeedNameMismatch  = errors.New("seed name does not match provided seed id")
)

func IsInvalidIdentifier(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier)
}

func IsSeedNameMismatch(err error) bool {
	return errors.Is(err, ErrSeedNameMismatch)
}

var seedHashPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

type kind int

const (
	kindPersistent kind = iota
	kindSeedID
	kindSeedName
)

// ProfileIdentifier is a tagged union over the three ways callers may refer
// to a profile: a persistent-store UUID, a precomputed seed hash, or a seed
// horse's display name still to be hashed. Construct values through
// Persistent, SeedID, or SeedName.
type ProfileIdentifier struct {
	kind     kind
	value    string
	seedName string
}

// Persistent identifies a profile row in the persistent store
func Persistent(id string) ProfileIdentifier {
	return ProfileIdentifier{kind: kindPersistent, value: id}
}

// SeedID identifies a seed profile by its 8-hex-digit name hash
func SeedID(hash string) ProfileIdentifier {
	return ProfileIdentifier{kind: kindSeedID, value: hash}
}

// SeedName identifies a seed profile by display name; the name is hashed
// during normalization
func SeedName(name string) ProfileIdentifier {
	return ProfileIdentifier{kind: kindSeedName, seedName: name}
}

// NormalizedIdentifier is the canonical, comparable form of a profile
// identifier. Two identifiers refer to the same profile iff their Keys are
// equal.
type NormalizedIdentifier struct {
	Key    string
	Source Source
	ID     string
}

// HashName derives the stable seed identifier for a horse name: FNV-1a,
// 32-bit, lowercase hex. Clients derive vote keys with the same algorithm, so
// it must never change or votes for seed profiles fragment across keys.
func HashName(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%08x", h.Sum32())
}

// Normalize maps a ProfileIdentifier to its canonical form. It is total over
// valid identifiers and idempotent: normalizing the parse of an emitted key
// yields the same result.
func Normalize(id ProfileIdentifier) (NormalizedIdentifier, error) {
	switch id.kind {
	case kindPersistent:
		parsed, err := uuid.Parse(strings.TrimSpace(id.value))
		if err != nil {
			return NormalizedIdentifier{}, fmt.Errorf("%w: %q is not a UUID", ErrInvalidIdentifier, id.value)
		}
		normalized := strings.ToLower(parsed.String())
		return NormalizedIdentifier{
			Key:    string(SourceDB) + ":" + normalized,
			Source: SourceDB,
			ID:     normalized,
		}, nil
	case kindSeedID:
		hash := strings.TrimSpace(id.value)
		if !seedHashPattern.MatchString(hash) {
			return NormalizedIdentifier{}, fmt.Errorf("%w: %q is not an 8-digit lowercase hex hash", ErrInvalidIdentifier, id.value)
		}
		return NormalizedIdentifier{
			Key:    string(SourceSeed) + ":" + hash,
			Source: SourceSeed,
			ID:     hash,
		}, nil
	case kindSeedName:
		name := strings.TrimSpace(id.seedName)
		if name == "" {
			return NormalizedIdentifier{}, fmt.Errorf("%w: seed name is empty", ErrInvalidIdentifier)
		}
		hash := HashName(name)
		return NormalizedIdentifier{
			Key:    string(SourceSeed) + ":" + hash,
			Source: SourceSeed,
			ID:     hash,
		}, nil
	default:
		return NormalizedIdentifier{}, fmt.Errorf("%w: unknown identifier kind", ErrInvalidIdentifier)
	}
}

// ParseKey is the inverse of Normalize's Key field
func ParseKey(key string) (NormalizedIdentifier, error) {
	switch {
	case strings.HasPrefix(key, string(SourceDB)+":"):
		return Normalize(Persistent(strings.TrimPrefix(key, string(SourceDB)+":")))
	case strings.HasPrefix(key, string(SourceSeed)+":"):
		return Normalize(SeedID(strings.TrimPrefix(key, string(SourceSeed)+":")))
	default:
		return NormalizedIdentifier{}, fmt.Errorf("%w: key %q has no db: or seed: prefix", ErrInvalidIdentifier, key)
	}
}

// Hint carries optional out-of-band information for Infer: an explicit source
// tag and/or the seed display name the client hashed locally.
type Hint struct {
	Source   Source
	SeedName string
}

// Infer classifies a raw identifier string. An explicit db:/seed: prefix
// wins, then the hint's source, then shape: UUIDs are persistent, 8-hex
// strings are seeds. When the hint names a seed alongside an explicit seed
// id, the hash of the name must match the id or the reference is ambiguous
// and rejected.
func Infer(rawID string, hint *Hint) (ProfileIdentifier, error) {
	raw := strings.TrimSpace(rawID)

	source := Source("")
	switch {
	case strings.HasPrefix(raw, string(SourceDB)+":"):
		raw = strings.TrimPrefix(raw, string(SourceDB)+":")
		source = SourceDB
	case strings.HasPrefix(raw, string(SourceSeed)+":"):
		raw = strings.TrimPrefix(raw, string(SourceSeed)+":")
		source = SourceSeed
	case hint != nil && hint.Source != "":
		source = hint.Source
	}

	if source == "" {
		if _, err := uuid.Parse(raw); err == nil {
			source = SourceDB
		} else if seedHashPattern.MatchString(strings.ToLower(raw)) {
			source = SourceSeed
		} else {
			return ProfileIdentifier{}, fmt.Errorf("%w: %q matches neither UUID nor seed hash shape", ErrInvalidIdentifier, rawID)
		}
	}

	switch source {
	case SourceDB:
		return Persistent(raw), nil
	case SourceSeed:
		id := strings.ToLower(raw)
		if hint != nil && hint.SeedName != "" {
			if HashName(strings.TrimSpace(hint.SeedName)) != id {
				return ProfileIdentifier{}, fmt.Errorf("%w: name %q hashes to %s, not %s",
					ErrSeedNameMismatch, hint.SeedName, HashName(strings.TrimSpace(hint.SeedName)), id)
			}
		}
		return SeedID(id), nil
	default:
		return ProfileIdentifier{}, fmt.Errorf("%w: unknown source %q", ErrInvalidIdentifier, source)
	}
}
