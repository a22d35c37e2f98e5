package domain

import (
	"fmt"
)

// KeySource identifies where the active key comes from.
//
// Sources are checked in declaration order; the first one holding a value is
// authoritative. None means no source holds a key.
type KeySource int

const (
	// KeySourceNone means no key is configured anywhere.
	KeySourceNone KeySource = iota
	// KeySourceConstant is a value compiled into the binary at build time.
	KeySourceConstant
	// KeySourceEnvironment is a process environment variable.
	KeySourceEnvironment
	// KeySourceDatabase is a row in the settings table.
	KeySourceDatabase
)

// String returns the lowercase source name.
func (s KeySource) String() string {
	switch s {
	case KeySourceConstant:
		return "constant"
	case KeySourceEnvironment:
		return "environment"
	case KeySourceDatabase:
		return "database"
	default:
		return "none"
	}
}

// MarshalText encodes the source as its name.
func (s KeySource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseKeySource converts a source name back into a KeySource.
func ParseKeySource(name string) (KeySource, error) {
	switch name {
	case "constant":
		return KeySourceConstant, nil
	case "environment":
		return KeySourceEnvironment, nil
	case "database":
		return KeySourceDatabase, nil
	case "none", "":
		return KeySourceNone, nil
	default:
		return KeySourceNone, fmt.Errorf("unknown key source: %s", name)
	}
}

// KeyStatus describes the key configuration without exposing the key.
type KeyStatus struct {
	Configured bool      `json:"configured"`
	Source     KeySource `json:"source"`
}
