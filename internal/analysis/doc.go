// Package analysis characterizes recorded orbits.
//
//   - [ExtractSeries]: distance and velocity components of one body over a run
//   - [PowerSpectrum], [DominantPeriod]: spectrum of a distance series
//   - [Apsides]: closest and farthest approach and the implied eccentricity
//   - [PhasePortraitToASCII]: distance against radial velocity
//   - [SurveyToASCII]: outcome of a parameter sweep
//
// # Orbital Period
//
// An elliptical orbit's distance oscillates once per revolution, so the
// strongest non-zero frequency of the distance series gives the period:
//
//	s := analysis.ExtractSeries(samples, id)
//	period, ok := analysis.DominantPeriod(s.Distance, s.Dt())
package analysis
