// Package driving defines the interfaces the CLI uses to reach the core
// services: startup, settings, providers, conversations, speech and
// storage maintenance.
//
// Implementations live in internal/core/services.
package driving
