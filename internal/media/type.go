package media

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType is returned when a value cannot be mapped between Type
// and a provider content type. Reaching it means a caller passed an unchecked
// value through, so it is never recovered from.
var ErrUnsupportedType = errors.New("unsupported media type")

// Type is the application's own media classification, independent of any
// provider's content type vocabulary.
type Type int

const (
	Movie Type = iota + 1
	Series
)

// Provider content types for the primary catalog.
const (
	ProviderMovie = "movie"
	ProviderTV    = "tv"
)

// Item types used by the generic item shape and the legacy catalog.
const (
	ItemMovie = "movie"
	ItemShow  = "show"
)

// ParseProviderType maps a primary catalog content type onto a Type.
func ParseProviderType(s string) (Type, error) {
	switch s {
	case ProviderMovie:
		return Movie, nil
	case ProviderTV:
		return Series, nil
	}
	return 0, fmt.Errorf("%w: provider type %q", ErrUnsupportedType, s)
}

// ProviderType is the inverse of ParseProviderType.
func (t Type) ProviderType() (string, error) {
	switch t {
	case Movie:
		return ProviderMovie, nil
	case Series:
		return ProviderTV, nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnsupportedType, int(t))
}

// ParseItemType maps a generic item type onto a Type.
func ParseItemType(s string) (Type, error) {
	switch s {
	case ItemMovie:
		return Movie, nil
	case ItemShow:
		return Series, nil
	}
	return 0, fmt.Errorf("%w: item type %q", ErrUnsupportedType, s)
}

// ItemType is the inverse of ParseItemType.
func (t Type) ItemType() (string, error) {
	switch t {
	case Movie:
		return ItemMovie, nil
	case Series:
		return ItemShow, nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnsupportedType, int(t))
}

func (t Type) String() string {
	s, err := t.ItemType()
	if err != nil {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return s
}

// MarshalText renders the type as its item type.
func (t Type) MarshalText() ([]byte, error) {
	s, err := t.ItemType()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText accepts the item type form.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseItemType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
