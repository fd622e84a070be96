// Package physics implements the gas chamber: point-mass particles of a
// fixed radius bouncing inside a rectangular enclosure, exchanging momentum
// with each other and heat with the walls.
//
// A tick runs four stages in order:
//
//   - [Integrate]: positions advance by velocity times frame time
//   - [ResolveWall]: circle/box contact, one-sided reflection, optional
//     thermal equilibration and speed resampling
//   - [BroadPhase]: candidate pairs ([AdjacentSweep], [SweepAndPrune], [Grid])
//   - [ResolveElastic]: exact 2-D elastic response for confirmed pairs
//
// [Chamber] owns the particle [Arena] and the four walls and runs the
// stages; configuration arrives as a [Settings] value on every call.
//
// # Units
//
// Masses are in kilograms, temperatures in kelvin and speeds in enclosure
// units per second. Rendered speeds are physical speeds multiplied by the
// reducer; temperatures are always computed from the physical speed.
package physics
