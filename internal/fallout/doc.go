// Package fallout implements the WSEG-10 fallout deposition and dose model.
//
// A [Scenario] gives the burst in SI units. [New] validates it, checks that
// the burst is close enough to the ground for local fallout, and reads the
// source term (cloud height, initial cloud radius, time constant) from the
// regime table for its yield. The resulting [Model] evaluates:
//
//   - the H+1 dose rate of deposited activity, an elongated pattern along
//     the effective wind whose crosswind spread grows with distance and
//     wind shear,
//   - the time fallout begins to arrive,
//   - the dose accumulated from arrival under the t^-1.2 decay law,
//   - the 30-day equivalent residual dose via the Bio factor table.
//
// [Evaluate] samples a model over a [Grid] into a [Field]. The cloud stem is
// not modelled, which underestimates close-in dose for small yields; such
// results carry the LowReliability flag.
//
// # Errors
//
// Invalid scenarios fail with [ErrInvalidParameters] before any lookup.
// Table lookups outside their domain fail with a [*StageError] naming the
// stage, wrapping a graph.OutOfDomainError.
//
// # Thread Safety
//
// Models and fields are not mutated after construction. Independent
// scenarios can be run concurrently with [EvaluateAll].
package fallout
