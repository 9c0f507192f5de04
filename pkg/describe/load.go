package describe

import (
	"os"
	"path/filepath"
	"strings"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
	"github.com/obsrv-dev/obsrv/pkg/obsrv"
)

// Format identifies a description file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatOf returns the format implied by the file extension of path.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".hcl":
		return FormatHCL, true
	}
	return "", false
}

// LoadFile reads the description file at path and returns its data.
func LoadFile(path string) (obsrv.Data, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, oerrors.New("O202").
			WithDetailf("unsupported file extension %q", filepath.Ext(path)).
			WithSuggestion("Use a .json or .hcl description file")
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, oerrors.New("O201").WithDetail(path).Wrap(err)
	}
	return Parse(src, path, format)
}

// Parse decodes src in the given format. filename is used in error
// locations only.
func Parse(src []byte, filename string, format Format) (obsrv.Data, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(src, filename)
	case FormatHCL:
		return ParseHCL(src, filename)
	}
	return nil, oerrors.New("O202").WithDetailf("unknown format %q", format)
}
