// Package core provides the foundational domain types and hardware ports
// used by Seeker. It defines the core abstractions for:
//
//   - Detections (object sightings with position and distance buckets)
//   - Search sessions (deadline, cancellation, pose and area bookkeeping)
//   - Outcomes (the sealed Found / NotFound / TimedOut / Failed family)
//   - Pluggable ports for cameras, vision providers and drivetrains
//
// The package intentionally keeps implementation concerns (persistence,
// strategy orchestration, concrete hardware) out of scope, exposing small
// interfaces to enable custom backends and extensions. All exported
// identifiers include concise documentation to aid discoverability and
// external consumption.
package core
