// Package claw holds the translator version shared by the driver and the
// configuration loader.
package claw

// Version is the translator version. Configuration documents must declare a
// version that is at least this one (compared on major.minor).
const Version = "0.9.0"
