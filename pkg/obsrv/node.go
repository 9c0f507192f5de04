package obsrv

import (
	"context"
	"strings"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
)

// Node is the live view over one object level of a store's data.
//
// Leaves read through to their reactive cell; nested groups are child
// Nodes built at construction time. The set of keys is fixed.
type Node struct {
	path string
	keys []string

	// setters is the hidden table of leaf update functions.
	setters map[string]func(any)
	cells   map[string]Cell
	groups  map[string]*Node

	// attached holds members assigned under reserved names.
	attached map[string]any

	env *env
}

// build recursively turns data into a Node tree. Keys are visited in sorted
// order so that cell allocation order is the same on every pass.
func build(data Data, path string, cells CellProvider, e *env) *Node {
	keys := sortedKeys(data)
	n := &Node{
		path:     path,
		keys:     keys,
		setters:  make(map[string]func(any)),
		cells:    make(map[string]Cell),
		groups:   make(map[string]*Node),
		attached: make(map[string]any),
		env:      e,
	}

	for _, key := range keys {
		value := data[key]
		if group, ok := asGroup(value); ok {
			n.groups[key] = build(group, joinPath(path, key), cells, e)
			continue
		}

		cell := cells.UseCell(value)
		n.cells[key] = cell
		n.setters[key] = cell.Set
	}

	return n
}

// Path returns the dotted path of this node from the root ("" for the root).
func (n *Node) Path() string {
	return n.path
}

// Keys returns the field names of this level in sorted order.
func (n *Node) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Has reports whether key is a field of this level.
func (n *Node) Has(key string) bool {
	if _, ok := n.cells[key]; ok {
		return true
	}
	_, ok := n.groups[key]
	return ok
}

// Get returns the current value of a leaf, the child *Node of a group, or a
// member attached under a reserved name.
func (n *Node) Get(key string) (any, bool) {
	if IsReserved(key) {
		v, ok := n.attached[key]
		return v, ok
	}
	if cell, ok := n.cells[key]; ok {
		return cell.Get(), true
	}
	if group, ok := n.groups[key]; ok {
		return group, true
	}
	return nil, false
}

// Value is Get without the presence flag; missing keys yield nil.
func (n *Node) Value(key string) any {
	v, _ := n.Get(key)
	return v
}

// Group returns the child node stored at key.
func (n *Node) Group(key string) (*Node, bool) {
	g, ok := n.groups[key]
	return g, ok
}

// Set writes value to a leaf through its setter. Reserved names are
// attached onto the node instead. Any other key fails with ErrUnknownField.
func (n *Node) Set(key string, value any) error {
	if IsReserved(key) {
		n.attached[key] = value
		return nil
	}

	setter, ok := n.setters[key]
	if !ok {
		err := n.unknownField(key)
		n.env.logger.Warn("write to unknown field", "path", joinPath(n.path, key))
		return err
	}

	path := joinPath(n.path, key)
	return n.env.observer.ObserveWrite(context.Background(), path, func() error {
		setter(value)
		n.env.logger.Debug("field written", "path", path)
		return nil
	})
}

func (n *Node) unknownField(key string) *oerrors.Error {
	path := joinPath(n.path, key)
	if _, ok := n.groups[key]; ok {
		return oerrors.New("O101").
			WithDetailf("%s is a group and has no setter", path).
			WithSuggestion("Write its leaves individually")
	}
	return oerrors.New("O101").WithDetailf("no field %q at %s", key, displayPath(n.path))
}

// Lookup resolves a dotted path such as "address.street". Reserved names
// are rejected with ErrUnknownField; use Get for attached members.
func (n *Node) Lookup(path string) (any, error) {
	parent, key, err := n.walk(path)
	if err != nil {
		return nil, err
	}
	v, ok := parent.Get(key)
	if !ok {
		return nil, parent.unknownField(key)
	}
	return v, nil
}

// SetPath writes value to the leaf at a dotted path. Unlike Set, a reserved
// name anywhere in path fails with ErrUnknownField.
func (n *Node) SetPath(path string, value any) error {
	parent, key, err := n.walk(path)
	if err != nil {
		return err
	}
	return parent.Set(key, value)
}

// walk descends to the node holding the last segment of path. Paths
// address data only, so a reserved segment is never a field.
func (n *Node) walk(path string) (*Node, string, error) {
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if IsReserved(seg) {
			return nil, "", oerrors.New("O101").
				WithDetailf("%q in %q is a reserved name, not a data field", seg, path)
		}
	}
	cur := n
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur.groups[seg]
		if !ok {
			if _, leaf := cur.cells[seg]; leaf {
				return nil, "", oerrors.New("O101").
					WithDetailf("%s is a leaf, not a group", joinPath(cur.path, seg))
			}
			return nil, "", cur.unknownField(seg)
		}
		cur = next
	}
	return cur, segments[len(segments)-1], nil
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
