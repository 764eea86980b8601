// Package services defines shared utilities consumed by the orchestrator and
// the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, tier names, and step names for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent process exit codes.
//
// Tool clients live in subpackages (handbrake, segmenter) and share the
// command.Runner abstraction so their invocations stay testable.
package services
