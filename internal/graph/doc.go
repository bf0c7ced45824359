// Package graph evaluates digitized curves and tabulated functions by
// bounds-checked interpolation.
//
// Two shapes of sample data are supported:
//
//   - [Table]: a dense grid over one or more axes, with one or more value
//     columns. Interpolation is multilinear, in log space along [Log] axes
//     and for [Log] value columns.
//   - [Family]: a ragged set of 1-D curves indexed by a parameter, such as
//     overpressure against range at several burst heights.
//
// Every lookup first runs [Guard] against the table's [Domain]. A query
// outside the domain fails with an [*OutOfDomainError] naming the axis and
// the violated bound. Nothing is clamped or extrapolated. A query that lands
// exactly on stored samples returns the stored value without arithmetic.
//
// # Domains
//
// [Rect] covers independent per-axis bounds. [Coupled] adds limits computed
// from the whole coordinate vector, for regions where the range of one axis
// depends on another. [All] intersects domains.
//
// # Thread Safety
//
// Tables and families are immutable after construction and may be shared
// between goroutines without locking.
package graph
