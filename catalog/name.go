package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Name is a validated catalog name: one or more slash-separated segments of
// alphanumerics, underscores and hyphens, such as "store/memory".
type Name struct {
	value string
}

const maxNameLen = 128

// NewName creates a Name with strict validation.
func NewName(name string) (Name, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Name{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLen {
		return Name{}, fmt.Errorf("%w: name too long (max %d chars)", ErrInvalidName, maxNameLen)
	}
	if strings.Contains(name, `\`) {
		return Name{}, fmt.Errorf("%w: name cannot contain backslashes", ErrInvalidName)
	}

	for _, seg := range strings.Split(name, "/") {
		if seg == "" {
			return Name{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidName, name)
		}
		for _, ch := range seg {
			if !isValidNameChar(ch) {
				return Name{}, fmt.Errorf("%w: %q must contain only alphanumeric characters, underscores, hyphens and slashes", ErrInvalidName, name)
			}
		}
	}

	return Name{value: name}, nil
}

func isValidNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' ||
		r == '-'
}

// MustNewName creates a Name or panics
func MustNewName(name string) Name {
	n, err := NewName(name)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the string representation
func (n Name) String() string {
	return n.value
}

// IsEmpty returns true if this is the zero value
func (n Name) IsEmpty() bool {
	return n.value == ""
}

// Equals checks if two names are equal
func (n Name) Equals(other Name) bool {
	return n.value == other.value
}

// MarshalJSON implements json.Marshaler.
func (n Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Name) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid name JSON: %w", err)
	}
	name, err := NewName(s)
	if err != nil {
		return err
	}
	*n = name
	return nil
}
