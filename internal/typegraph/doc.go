// Package typegraph holds the index-addressed graph of a schema's named types
// and the abstract type closure computed over it.
//
// Types are nodes addressed by a stable integer index; every field of an
// object or interface is an edge to the node of its named type. Cycles in the
// graph are ordinary: traversals track the nodes on the current path
// explicitly and never rely on call-stack depth.
//
// The closure answers two questions consumed by both the selection projector
// and the resolver map builder:
//
//   - which concrete object types may appear at an interface or union position
//     (implementer sets), and
//   - which object and interface types reach an abstract-typed field, directly
//     or through any chain of object-typed fields, together with the fields
//     that must be rewritten in a resolver parent shape because of it.
//
// A Graph and its ClosureResult are immutable once built and may be shared
// freely between goroutines.
package typegraph
