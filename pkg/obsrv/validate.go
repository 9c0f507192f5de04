package obsrv

import (
	"fmt"
	"strings"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
)

// Validate checks a description for structural correctness.
// It has no side effects.
func Validate(desc Description) error {
	if isFalsy(desc.Data) {
		return oerrors.New("O001").
			WithDetail("The store description has no data.").
			WithSuggestion("Pass a map of fields as Description.Data")
	}

	data, ok := asGroup(desc.Data)
	if !ok {
		return oerrors.New("O002").
			WithDetailf("data must be a map of fields, got %T", desc.Data)
	}

	if bad := reservedKeys(data, "data"); len(bad) > 0 {
		return oerrors.New("O003").
			WithDetailf("data cannot contain reserved names (%s): found %s",
				strings.Join(ReservedNames(), ", "), strings.Join(bad, ", ")).
			WithSuggestion("Rename the field")
	}

	return nil
}

// reservedKeys returns the paths of every reserved key in m, at any depth.
func reservedKeys(m Data, path string) []string {
	var bad []string
	for _, k := range sortedKeys(m) {
		p := joinPath(path, k)
		if IsReserved(k) {
			bad = append(bad, fmt.Sprintf("%q at %s", k, p))
			continue
		}
		if g, ok := asGroup(m[k]); ok {
			bad = append(bad, reservedKeys(g, p)...)
		}
	}
	return bad
}
