package namespace

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanName returns the normalized form of name, or ErrBadName when name
// cannot be stored in a directory.
func CleanName(name string) (string, error) {
	n := norm.NFC.String(name)
	switch {
	case n == "":
		return "", fmt.Errorf("%w: empty name", ErrBadName)
	case n == "." || n == "..":
		return "", fmt.Errorf("%w: %q is reserved", ErrBadName, n)
	case strings.ContainsAny(n, "/\x00"):
		return "", fmt.Errorf("%w: %q contains a separator or NUL", ErrBadName, n)
	}
	return n, nil
}
