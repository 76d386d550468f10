// Package layout places event cards along a time axis.
//
// A layout pass runs five steps over immutable inputs:
//
//  1. Events are projected onto the axis and swept left to right into
//     anchors (cluster.go).
//  2. Each anchor's members are split into full, compact, grouped and
//     summary cards under a lane capacity budget (planner.go).
//  3. Cards are packed onto a grid of rows above and below the axis,
//     avoiding cards of anchors packed earlier (packer.go).
//  4. A cascade of resolver stages removes every remaining overlap; the
//     sweep-line stage is overlap-free by construction (resolver.go).
//  5. If the result spills past the container margins the pass is
//     repeated at a coarser degradation level (engine.go).
//
// Every pass owns its state, so an Engine may be shared between
// goroutines.
package layout
