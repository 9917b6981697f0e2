// Package drive contains Drivetrain implementations. The Drivetrain port
// itself lives in the core package; the simulator here is the default
// backend for development and tests and the model for writing a real
// hardware adapter.
package drive
