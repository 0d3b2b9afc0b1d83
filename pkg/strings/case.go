package strings

import "github.com/iancoleman/strcase"

// ToScreamingSnakeCase names environment variables after identifiers.
func ToScreamingSnakeCase(s string) string {
	return strcase.ToScreamingSnake(s)
}

// ToCamelCase names backend services in caller-visible messages: "auth" becomes "Auth".
func ToCamelCase(s string) string {
	return strcase.ToCamel(s)
}
