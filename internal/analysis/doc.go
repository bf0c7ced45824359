// Package analysis post-processes fallout fields.
//
//   - [Lethality]: lognormal dose-response, fraction killed per node and
//     expected fatalities over a population density
//   - [YieldSweep]: evaluates one scenario over a range of yields and
//     summarises each dose field
//
// # Casualty Estimates
//
// The default curve takes the 30-day equivalent residual dose:
//
//	l := analysis.DefaultLethality()
//	deaths := l.ExpectedFatalities(field.ERD, field.CellArea(), 200)
package analysis
