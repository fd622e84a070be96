// Package dynamo provides core simulation primitives for the gas chamber.
//
// The package defines the types shared between the physics engine and the
// code that drives it:
//
//   - [System]: anything that can be advanced by a frame time and snapshotted
//   - [Frame]: read-only view of particle state after a tick
//   - [StepStats]: per-tick collision counters
//   - [Metric] and [Observer]: consumers of frames
//   - [Simulator]: headless fixed-step driver with cancellation
//   - [RunState]: the Running/Paused switch used by interactive drivers
//
// # Example
//
//	chamber, _ := physics.NewChamber(setup)
//	sys := physics.Bind(chamber, func() physics.Settings { return settings })
//	sim := dynamo.New(sys)
//	result, _ := sim.Run(ctx, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Systems are stepped from a
// single goroutine; parallelism, where used, stays inside one stage of a
// tick (see [ParallelFor]).
package dynamo
