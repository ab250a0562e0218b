package validation

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/urbsense/location-insight-service/internal/models"
)

// ErrQueryTooLong is returned when the search query exceeds the maximum length.
var ErrQueryTooLong = errors.New("query too long")

// ErrQueryInvalidChars is returned when the query contains disallowed characters.
var ErrQueryInvalidChars = errors.New("query contains invalid characters")

// ErrCoordinateMissing is returned when a lat or lng parameter is absent.
var ErrCoordinateMissing = errors.New("latitude and longitude are required")

// ErrCoordinateMalformed is returned when lat/lng cannot be parsed as numbers.
var ErrCoordinateMalformed = errors.New("latitude and longitude must be numeric")

// ErrCoordinateOutOfRange is returned for coordinates outside WGS84 bounds.
var ErrCoordinateOutOfRange = errors.New("coordinate out of range")

// ValidateQuery trims the input, enforces a maximum length (maxLen in runes),
// and restricts to allowed characters: letters (Unicode), digits, space,
// comma, period, apostrophe, hyphen. Empty and very short queries are valid;
// the resolver answers them with default results.
func ValidateQuery(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if maxLen > 0 && len(r) > maxLen {
		return "", ErrQueryTooLong
	}
	for _, c := range r {
		if !isAllowedQueryRune(c) {
			return "", ErrQueryInvalidChars
		}
	}
	return s, nil
}

// isAllowedQueryRune returns true for letters (Unicode), digits, space,
// comma, period, apostrophe, hyphen.
func isAllowedQueryRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '.', '\'', '-':
		return true
	}
	return false
}

// ParseCoordinate parses lat/lng query parameters and enforces WGS84 bounds.
func ParseCoordinate(latStr, lngStr string) (models.Coordinate, error) {
	if strings.TrimSpace(latStr) == "" || strings.TrimSpace(lngStr) == "" {
		return models.Coordinate{}, ErrCoordinateMissing
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return models.Coordinate{}, ErrCoordinateMalformed
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return models.Coordinate{}, ErrCoordinateMalformed
	}
	c := models.Coordinate{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return models.Coordinate{}, ErrCoordinateOutOfRange
	}
	return c, nil
}
