// Package obsrv builds a live, reactive store from a plain description of
// data, computed values and actions.
//
// A store is constructed once per owning scope:
//
//	store, err := obsrv.New(obsrv.Description{
//	    Data: obsrv.Data{
//	        "name": "John",
//	        "address": obsrv.Data{
//	            "street": "123 main",
//	        },
//	        "tags": []any{"foo", "bar"},
//	    },
//	    Computeds: map[string]obsrv.ComputedFunc{
//	        "nameLength": func(d *obsrv.Node) any {
//	            return len(d.Value("name").(string))
//	        },
//	    },
//	    Actions: map[string]obsrv.ActionFunc{
//	        "rename": func(d *obsrv.Node, args ...any) (any, error) {
//	            return nil, d.Set("name", args[0])
//	        },
//	    },
//	})
//
// Every leaf of Data (anything that is not a nested map; slices included)
// is backed by its own reactive cell. Nested maps become nested *Node views
// with the same Get/Set contract. The shape is closed: writing a key that
// was not in the description fails with ErrUnknownField.
//
//	store.Value("name")                     // "John"
//	store.SetPath("address.street", "x")    // only that leaf changes
//	store.Computeds().Get("nameLength")     // evaluated on every read
//	store.Actions().Call("rename", "Jane")  // bound to the current data
//	store.GetJSON(2)                        // plain snapshot as JSON
//
// # Reactive cells
//
// Cells come from a CellProvider. ScopeCells(owner) hands out hook-slot
// signals from a reactive.Owner, so constructing the store again inside the
// same owner's render pass reuses the same cells and keeps their values.
// Writes go through the cell's Set, which notifies the host's listeners.
//
// # Reserved names
//
// _setters, computeds, actions, getJS and getJSON may not be used as keys
// anywhere in Data. The facade attaches its own members under those names.
// Lookup and SetPath address data only and reject them as unknown fields.
package obsrv
