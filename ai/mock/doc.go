// Package mock provides deterministic test doubles for the ai interfaces.
//
// The default embedder derives a unit vector from an FNV hash of the input
// text, so identical texts always embed identically and tests need no
// external service. Behavior can be overridden per test through the
// exported function fields.
package mock
