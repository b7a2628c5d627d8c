// Package gentest holds validators rendered by package gen for the fixture
// manifest of its tests, so the rendered source is compiled and run.
package gentest

//go:generate go test .. -run TestGeneratedFixtureIsCurrent -update
