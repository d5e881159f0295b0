// Package postprocess turns a provider's free-text answer into a validated
// recommendation set.
//
// Models are asked to embed a fenced ```json block carrying
// {"recommendations": [...]}. The Processor locates and parses that block,
// fills gaps from the destination reference, converts costs that were
// reported in a foreign currency, and clamps every cost to the per-traveler
// budget ceiling. A missing or unusable block is reported through
// Outcome.Structured rather than as an error.
package postprocess
