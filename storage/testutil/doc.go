// Package testutil provides a behavioral test suite every storage.Strategy
// must pass. Backend tests call RunStrategySuite with a constructor that
// returns a fresh, empty strategy.
package testutil
