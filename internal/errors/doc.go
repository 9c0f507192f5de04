// Package errors provides the structured error type used across obsrv.
//
// Every error carries a stable code (e.g. "O101") that maps to a registered
// template with a category, a short message and a longer explanation.
// Errors built from the same code compare equal under errors.Is, so callers
// can match on exported sentinels without caring about the detail text.
//
// # Error Categories
//
//   - construction: the store description is structurally invalid
//   - runtime: an access on a live store referenced an unknown name
//   - load: a description file could not be read or parsed
//   - config: obsrv.json is missing or invalid
//
// # Usage
//
//	err := errors.New("O003").
//	    WithDetail(`reserved key "actions" at data.actions`).
//	    WithSuggestion("Rename the field")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR O003: Reserved name in data
//	//
//	//   reserved key "actions" at data.actions
//	//
//	//   Hint: Rename the field
package errors
