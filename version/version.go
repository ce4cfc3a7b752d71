// Package version holds the engine's build-time version identifiers.
package version

// GitSummary is the engine's release tag; manually bumped per release.
const GitSummary = "v0.1.0"

// GitBranch is left empty for release builds.
const GitBranch = ""
