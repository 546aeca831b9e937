// Package resource provides generation-tagged handle management for
// native resources exposed across the language boundary.
//
// Callers on the far side of the boundary hold opaque integer handles
// instead of pointers. A handle packs a table index together with a
// generation counter, so a handle that has already been destroyed misses
// on lookup instead of reaching freed state:
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	h := table.Insert(typeID, myValue)
//
//	// Retrieve value by handle
//	value, ok := table.Get(h)
//
//	// Remove and get value back (ownership returns to the table's owner)
//	value, ok := table.Remove(h)
//
//	// Any later use of h misses
//	_, ok = table.Get(h) // !ok
//
// # Type Safety
//
// Handles are typed. Each resource type gets a unique type ID:
//
//	const NodeTypeID = 1
//	const DocTypeID = 2
//
//	value, ok := table.GetTyped(h, NodeTypeID) // ok
//	value, ok := table.GetTyped(h, DocTypeID)  // !ok
//
// Values may implement Dropper to run teardown when removed.
package resource
