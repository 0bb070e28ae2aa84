package utils

import (
	"fmt"
	"strings"
)

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// ClaimString reads a JWT claim that may arrive as a string, a number or a
// single-element list, which is how different backend versions encode ids and roles.
func ClaimString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case []any:
		return strings.Join(ToStringSlice(t), ",")
	default:
		return fmt.Sprint(t)
	}
}
