// Package domain defines the core entities persisted by murmur.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - AppSettings: The singleton window/theme preferences row
//   - APIConfiguration: A chat provider endpoint with its secret key
//   - TTSConfiguration: A speech provider endpoint with its secret key
//   - Conversation / Message: Chat transcripts
//   - AudioCacheEntry: Synthesized speech keyed by content hash
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
