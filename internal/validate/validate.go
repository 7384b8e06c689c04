// Package validate normalizes and checks caller-supplied input before it
// reaches the credential service or the weather gateway.
package validate

import (
	"strconv"
	"strings"

	"github.com/dawe014/web-service-integration-assignment/internal/apperr"
)

const bearerScheme = "Bearer"

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>"
// header value. The token itself is returned unmodified.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.BadRequest(apperr.MsgMissingAuthHeader)
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerScheme {
		return "", apperr.BadRequest(apperr.MsgInvalidAuthFormat)
	}

	return parts[1], nil
}

// RequireCitiesArray fails unless v is a decoded JSON array with at least one
// element. Element types are checked later by CleanCityNames.
func RequireCitiesArray(v any) error {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return apperr.BadRequest(apperr.MsgMissingCities)
	}
	return nil
}

// CleanCityNames renders each element as a string, trims it and drops the
// empty ones. The result may be empty.
func CleanCityNames(list []any) []string {
	cleaned := make([]string, 0, len(list))
	for _, v := range list {
		s := strings.TrimSpace(stringify(v))
		if s == "" {
			continue
		}
		cleaned = append(cleaned, s)
	}
	return cleaned
}

// stringify renders a decoded JSON value the way a browser would coerce it
// to a string: numbers in shortest form, arrays comma-joined, objects opaque.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			if e != nil {
				parts[i] = stringify(e)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return ""
	}
}
