package obsrv

import "github.com/obsrv-dev/obsrv/pkg/reactive"

// Store is the object returned by New. It embeds the root *Node, so data
// fields are read and written directly on it.
//
// The facade members are also attached to the root under their reserved
// names, but the accessors below read the Store's own copies, so a later
// reserved-name write on the root cannot break them.
type Store struct {
	*Node

	computeds *Computeds
	actions   *Actions
}

// New validates desc, builds the live data graph and attaches the
// computeds, actions, getJS and getJSON members onto the root.
// On any validation error it returns a nil store.
func New(desc Description, opts ...Option) (*Store, error) {
	if err := Validate(desc); err != nil {
		return nil, err
	}

	o, e := buildOptions(opts)

	data, _ := asGroup(desc.Data)
	if data == nil {
		data = Data{}
	}
	root := build(data, "", o.cells, e)

	computeds := newComputeds(desc.Computeds, root, e)
	actions := newActions(desc.Actions, root, e)

	// Reserved-name writes attach and cannot fail.
	_ = root.Set(ReservedComputeds, computeds)
	_ = root.Set(ReservedActions, actions)
	_ = root.Set(ReservedGetJS, func() Data {
		return extractRaw(root)
	})
	_ = root.Set(ReservedGetJSON, func(indent int) (string, error) {
		return encodeJSON(extractRaw(root), indent)
	})

	e.logger.Debug("store constructed",
		"fields", len(root.keys),
		"computeds", len(computeds.defs),
		"actions", len(actions.defs))

	return &Store{Node: root, computeds: computeds, actions: actions}, nil
}

// Computeds returns the store's computed view.
func (s *Store) Computeds() *Computeds {
	return s.computeds
}

// Actions returns the store's action view.
func (s *Store) Actions() *Actions {
	return s.actions
}

// GetJS returns a plain snapshot of the current data, free of reserved
// members and reactive behavior.
func (s *Store) GetJS() Data {
	return extractRaw(s.Node)
}

// GetJSON returns the snapshot as JSON. indent <= 0 is compact; otherwise
// the output is indented by that many spaces (at most 10).
func (s *Store) GetJSON(indent int) (string, error) {
	return encodeJSON(extractRaw(s.Node), indent)
}

// Batch runs fn and delivers the notifications of every write inside it
// once, after fn returns.
func (s *Store) Batch(fn func()) {
	reactive.Batch(fn)
}
