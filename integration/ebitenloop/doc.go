// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ebitenloop adapts an Ebitengine game loop to the voxel pipeline's
// frame loop contract.
//
// Incremental builds spread chunk meshing across frames: each frame gets one
// time-budgeted tick, and the measured frame cost steers the budget. This
// package runs those ticks inside ebiten.Game.Update and reports Draw
// durations as the presentation cost, so a build session breathes with the
// real frame rate of the host game.
//
// # Usage
//
// Loop is an ebiten.Game. Either run it directly or embed it in an existing
// game and forward Update/Draw:
//
//	loop := ebitenloop.New(ebitenloop.WithDraw(drawWorld))
//	sch, err := voxel.New(store, palette, voxel.WithFrameLoop(loop))
//	if err != nil { ... }
//
//	go sch.Build(ctx, voxel.ModeIncremental)
//	if err := ebiten.RunGame(loop); err != nil { ... }
//
// # Thread Safety
//
// Schedule may be called from any goroutine. Update and Draw must be called
// from the Ebitengine run loop only, which Ebitengine guarantees.
package ebitenloop
