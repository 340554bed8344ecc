// Package services defines shared utilities consumed by the search
// pipeline and external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify
//     failures into the pipeline's taxonomy: parse and strategy errors
//     abort a session at planning, source errors accumulate as
//     warnings, evaluation errors retry then abort, configuration
//     errors reject session creation.
//   - The Fatal helper that separates absorbable per-adapter failures
//     from session-terminating ones.
//
// Use these helpers when wiring new capability backends so error
// handling stays uniform across the pipeline.
package services
