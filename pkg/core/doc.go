// Package core defines the shared contract for the rolodex storage backends.
//
// It holds the Person aggregate model, the Store interface both embedded
// engines implement, and the pieces of the relationship materialization
// policy that are backend-independent: one-pass child grouping, empty
// child-collection normalization, and the file-size probe.
//
// # Key Components
//
//   - Person / Address / EmailAddress: the aggregate root and its two owned
//     child collections, treated as one unit for write and read purposes.
//   - Store: the operation surface mirrored by both backends (bulk create,
//     read-all, bulk update, delete-all, delete-selected, reset, size).
//   - OpResult / ReadResult: every operation reports affected rows, the
//     post-operation on-disk size in MB and its own elapsed time.
//   - Logger: pluggable structured logging shared by the backends.
//
// Backend selection happens at construction time through the rolodex
// facade; callers program against Store and never see which engine is
// underneath.
package core
