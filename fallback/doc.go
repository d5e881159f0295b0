// Package fallback produces replies without any language model.
//
// The Generator is the terminal safety net of a turn: it is deterministic
// for a given session snapshot and cannot fail. Dialogue states are answered
// from template banks conditioned on which context fields are still missing;
// RECOMMENDING sessions get a catalog-backed recommendation set that obeys the
// same budget ceiling as model-produced recommendations.
package fallback
