// Package physics advances the orbital sandbox by one frame.
//
// The [Engine] owns the force model, which is sun-to-planet gravity only,
// applied as a single explicit-Euler velocity increment per frame:
//
//	a = G * M_sun * m / d^2 / m
//
// Position integration, contact detection and constraint solving are
// delegated to the cp stepper space, advanced once per frame by the
// engine's time scale.
//
// Locked planets are skipped entirely. Held planets receive gravity unless
// [Engine.GravityWhileHeld] is false.
package physics
