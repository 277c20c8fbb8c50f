// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Database: Schema lifecycle, backup and diagnostics
//   - SettingsStore: Singleton settings row
//   - APIConfigStore: Chat provider configuration persistence
//   - TTSConfigStore: Speech provider configuration persistence
//   - ConversationStore: Conversation and message persistence
//   - AudioCache: Content-addressed synthesized audio
//   - SecretProtector: Protects API keys before they reach disk
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Synthesizer: Speech synthesis. Without it, SpeechService only serves cache hits.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
