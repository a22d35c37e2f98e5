package domain

import (
	"slices"
	"strings"
)

// FieldSet is a validated, duplicate-free list of encryptable field names.
type FieldSet []string

// ParseFieldSet normalizes names (trimmed, lower case, blanks dropped) and
// rejects anything outside EncryptableFields. An empty input yields
// DefaultSensitiveFields.
func ParseFieldSet(names []string) (FieldSet, error) {
	set := make(FieldSet, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || slices.Contains(set, name) {
			continue
		}
		if !IsEncryptable(name) {
			return nil, WrapUnknownField(name)
		}
		set = append(set, name)
	}
	if len(set) == 0 {
		return slices.Clone(FieldSet(DefaultSensitiveFields)), nil
	}
	return set, nil
}

// IsEncryptable reports whether name is one of EncryptableFields.
func IsEncryptable(name string) bool {
	return slices.Contains(EncryptableFields, name)
}

func (f FieldSet) String() string {
	return strings.Join(f, ",")
}
