// Package artifact builds core.Artifact values from raw engine results.
//
// The mapping is the bridge between the opaque generation backend and
// the typed task model: the script text travels as a plain text part,
// while metadata and the scene breakdown travel as inline JSON data
// parts, so a single artifact carries the complete production bundle.
package artifact
