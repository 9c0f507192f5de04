// Package describe loads store data from description files.
//
// A description file holds only the data part of an obsrv.Description;
// computeds and actions are Go functions and are attached by the caller:
//
//	data, err := describe.LoadFile("store.hcl")
//	if err != nil {
//	    return err
//	}
//	store, err := obsrv.New(obsrv.Description{Data: data, Actions: actions})
//
// Two formats are supported, selected by file extension. JSON files hold a
// single object. HCL files hold top-level attributes whose values may be
// objects, tuples or primitives:
//
//	name  = "John"
//	email = "jsmith@email.com"
//	address = {
//	  street = "123 main"
//	  city   = "Springfield"
//	}
//	tags = ["foo", "bar"]
//
// Whole numbers decode to int and all other numbers to float64 in both
// formats, so a JSON and an HCL file describing the same data load equal.
package describe
