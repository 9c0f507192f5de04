package describe

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
	"github.com/obsrv-dev/obsrv/pkg/obsrv"
)

// ParseHCL decodes an HCL description. Only top-level attributes are
// allowed; blocks are rejected. Expressions are evaluated without
// variables or functions.
func ParseHCL(src []byte, filename string) (obsrv.Data, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	// Evaluate in source order so the first bad attribute is reported.
	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	data := make(obsrv.Data, len(ordered))
	for _, attr := range ordered {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diagError(diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			r := attr.Expr.Range()
			return nil, oerrors.New("O202").
				WithDetailf("attribute %q: %v", attr.Name, err).
				WithLocation(r.Filename, r.Start.Line, r.Start.Column)
		}
		data[attr.Name] = native
	}
	return data, nil
}

// ctyToNative converts an evaluated HCL value into plain Go values: maps
// for objects, slices for tuples and lists, int or float64 for numbers.
func ctyToNative(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		var i int
		if err := gocty.FromCtyValue(val, &i); err == nil {
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(val, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			nv, err := ctyToNative(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			out[k.AsString()] = nv
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			nv, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}

func diagError(diags hcl.Diagnostics) error {
	e := oerrors.New("O202").Wrap(diags)
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		e = e.WithDetail(d.Summary + detailSuffix(d.Detail))
		if d.Subject != nil {
			e = e.WithLocation(d.Subject.Filename, d.Subject.Start.Line, d.Subject.Start.Column)
		}
		break
	}
	return e
}

func detailSuffix(detail string) string {
	if detail == "" {
		return ""
	}
	return "; " + detail
}
