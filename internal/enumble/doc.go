// Package enumble keeps an ordered, uniqueness-checked set of enum-like
// entries for one owning model and resolves loosely typed keys to them.
//
// A model declares its entries once, at load time:
//
//	colors := enumble.NewRegistry("Color", enumble.WithColumns("hex"))
//	colors.MustDeclare("black", 1, enumble.WithAttribute("hex", "#000000"))
//	colors.MustDeclare("white", 2, enumble.WithAttribute("hex", "#ffffff"))
//	colors.Freeze()
//
// Lookups never touch storage. Keys may be ids, symbolic names, label
// strings, entries or host records that already carry an entry:
//
//	colors.Resolver().Find(1, "WHITE", enumble.Name("black"))
//
// Entries are compared with an OR rule: two entries are equal when they share
// an id, a name or a label. The registry rejects any declaration that is
// equal to an existing entry.
//
// Persisting a registry into its backing table lives in package reconcile.
package enumble
