package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	pkgstrings "github.com/klwxsrx/go-rpc-gateway/pkg/strings"
)

func Must[T any](val T, err error) T {
	if err != nil {
		panic(fmt.Errorf("parse environment: %w", err))
	}
	return val
}

// Load preloads variables from dotenv files without overriding the process environment.
// Missing files are skipped.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load dotenv files %s: %w", strings.Join(existing, ","), err)
	}

	return nil
}

func Parse[T pkgstrings.SupportedParsingTypes](key string) (T, error) {
	var result T
	str, ok := os.LookupEnv(key)
	if !ok {
		return result, fmt.Errorf("env %s with type %T not found", key, result)
	}

	result, err := pkgstrings.ParseTypedValue[T](strings.TrimSpace(str))
	if err != nil {
		return result, fmt.Errorf("env %s with type %T has invalid value: %w", key, result, err)
	}

	return result, nil
}

// ParseOptional returns nil when the variable is unset or empty.
func ParseOptional[T pkgstrings.SupportedParsingTypes](key string) (*T, error) {
	str, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(str) == "" {
		return nil, nil
	}

	result, err := Parse[T](key)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func ParseOrDefault[T pkgstrings.SupportedParsingTypes](key string, defaultValue T) (T, error) {
	result, err := ParseOptional[T](key)
	if err != nil {
		return defaultValue, err
	}
	if result == nil {
		return defaultValue, nil
	}

	return *result, nil
}
