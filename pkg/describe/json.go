package describe

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
	"github.com/obsrv-dev/obsrv/pkg/obsrv"
)

// ParseJSON decodes a JSON description. The document must be one object.
func ParseJSON(src []byte, filename string) (obsrv.Data, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, jsonError(src, filename, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, oerrors.New("O202").
			WithDetail("unexpected content after the top-level object")
	}

	data, ok := normalizeJSON(raw).(map[string]any)
	if !ok {
		return nil, oerrors.New("O202").
			WithDetailf("top level must be an object, got %s", jsonKind(raw))
	}
	return data, nil
}

func normalizeJSON(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalizeJSON(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = normalizeJSON(e)
		}
		return v
	case json.Number:
		return jsonNumber(v)
	}
	return v
}

// jsonNumber converts whole numbers that fit an int to int, including
// forms such as 1.0 and 1e3, and everything else to float64. HCL numbers
// convert the same way, so equal documents load equal in either format.
func jsonNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	f, err := n.Float64()
	if err == nil && f == math.Trunc(f) && f >= math.MinInt64 && f < -math.MinInt64 {
		return int(f)
	}
	return f
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	}
	return "value"
}

func jsonError(src []byte, filename string, err error) error {
	e := oerrors.New("O202").Wrap(err)

	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntax):
		line, col := position(src, syntax.Offset)
		return e.WithDetail(syntax.Error()).WithLocation(filename, line, col)
	case errors.As(err, &typ):
		line, col := position(src, typ.Offset)
		return e.WithDetail(typ.Error()).WithLocation(filename, line, col)
	case errors.Is(err, io.EOF):
		return e.WithDetail("file is empty").WithSuggestion("Write a JSON object such as {\"name\": \"John\"}")
	}
	return e.WithDetail(err.Error())
}

// position converts a byte offset to a 1-based line and column.
func position(src []byte, offset int64) (int, int) {
	if offset > int64(len(src)) {
		offset = int64(len(src))
	}
	before := src[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// ParseValue decodes a single JSON value of any kind, applying the same
// number rules as description files.
func ParseValue(src []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected content after value")
	}
	return normalizeJSON(v), nil
}
