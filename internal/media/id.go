package media

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Namespace is the provider prefix of every canonical ID.
const Namespace = "tmdb"

const idSeparator = "-"

var (
	// slugStripRe drops anything that is not a letter, digit, space or dash.
	slugStripRe = regexp.MustCompile(`[^a-z0-9\s-]+`)

	// slugJoinRe collapses runs of whitespace and dashes into one dash.
	slugJoinRe = regexp.MustCompile(`[\s-]+`)
)

// ID is the opaque canonical identifier used in application routes:
// {provider}-{contentType}-{numericId}-{slug}. The slug is cosmetic.
type ID string

// Decoded holds the meaningful parts of an ID.
type Decoded struct {
	Provider  string
	Type      Type
	NumericID string
}

// Equal reports whether both refer to the same media. Slugs never matter.
func (d Decoded) Equal(o Decoded) bool {
	return d.Provider == o.Provider && d.Type == o.Type && d.NumericID == o.NumericID
}

// EncodeID builds the canonical ID for a primary catalog item.
func EncodeID(t Type, numericID, title string) (ID, error) {
	contentType, err := t.ProviderType()
	if err != nil {
		return "", err
	}
	if !isNumeric(numericID) {
		return "", fmt.Errorf("invalid numeric id %q", numericID)
	}

	parts := []string{Namespace, contentType, numericID}
	if slug := Slug(title); slug != "" {
		parts = append(parts, slug)
	}
	return ID(strings.Join(parts, idSeparator)), nil
}

// DecodeID splits a canonical ID. It returns false rather than an error for
// anything it does not recognize so callers can use it as a predicate.
func DecodeID(id string) (Decoded, bool) {
	parts := strings.SplitN(id, idSeparator, 4)
	if len(parts) < 3 || parts[0] != Namespace {
		return Decoded{}, false
	}
	t, err := ParseProviderType(parts[1])
	if err != nil {
		return Decoded{}, false
	}
	if !isNumeric(parts[2]) {
		return Decoded{}, false
	}
	return Decoded{Provider: parts[0], Type: t, NumericID: parts[2]}, true
}

// SameMedia reports whether two IDs decode to the same item.
func SameMedia(a, b ID) bool {
	da, ok := DecodeID(string(a))
	if !ok {
		return false
	}
	db, ok := DecodeID(string(b))
	if !ok {
		return false
	}
	return da.Equal(db)
}

// Slug renders a lowercase ASCII, URL safe version of title.
func Slug(title string) string {
	s := strings.ToLower(unidecode.Unidecode(title))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugJoinRe.ReplaceAllString(s, idSeparator)
	return strings.Trim(s, idSeparator)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
