package obsrv

import (
	"reflect"
	"sort"
)

// Data is the plain, nested description of a store's fields.
// Nested maps are groups; every other value is a leaf.
type Data = map[string]any

// ComputedFunc derives a value from the current data. It is called on every
// read and should not have side effects.
type ComputedFunc func(data *Node) any

// ActionFunc runs an operation with the current data bound as its first
// argument.
type ActionFunc func(data *Node, args ...any) (any, error)

// Description is the caller-supplied definition of a store.
type Description struct {
	// Data must be a map of field names to leaves or nested maps.
	// It is typed as any so that shape errors surface from Validate.
	Data any

	Computeds map[string]ComputedFunc
	Actions   map[string]ActionFunc
}

// Reserved names used by the facade.
const (
	ReservedSetters   = "_setters"
	ReservedComputeds = "computeds"
	ReservedActions   = "actions"
	ReservedGetJS     = "getJS"
	ReservedGetJSON   = "getJSON"
)

var reservedNames = map[string]bool{
	ReservedSetters:   true,
	ReservedComputeds: true,
	ReservedActions:   true,
	ReservedGetJS:     true,
	ReservedGetJSON:   true,
}

// IsReserved reports whether name is reserved for the store facade.
func IsReserved(name string) bool {
	return reservedNames[name]
}

// ReservedNames returns the reserved names in sorted order.
func ReservedNames() []string {
	names := make([]string, 0, len(reservedNames))
	for name := range reservedNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// asGroup reports whether v is a group (a map with string keys) and returns
// it as a Data map. Maps of other value types are widened to map[string]any.
func asGroup(v any) (Data, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}

	out := make(Data, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// isFalsy reports whether v counts as absent: nil, a nil map/slice/pointer,
// or a zero scalar.
func isFalsy(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func sortedKeys(m Data) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
