// Package spatial contains the robot's spatial memory: discovered rooms,
// learned object→room associations and their frequency-derived confidence,
// scene classification, and the single-file JSON persistence of the map.
// The store is the system's only persistent state; everything else is
// rebuilt per search run.
package spatial
