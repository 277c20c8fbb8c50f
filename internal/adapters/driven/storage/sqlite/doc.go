// Package sqlite provides the SQLite-based implementation of murmur's driven ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single Store implements every persistence port through
// wrapper types:
//
//   - SettingsStore: The singleton AppSettings row
//   - APIConfigStore / TTSConfigStore: Provider configurations with protected keys
//   - ConversationStore: Conversations and messages
//   - AudioCache: Content-addressed synthesized speech
//
// # Connections
//
// SQLite serialises writers at the file level, so every mutation goes through
// a Pool holding a single writer permit. Each writer acquisition opens a fresh
// physical connection configured with busy_timeout, WAL journaling and
// synchronous=NORMAL, and closes it on release. Reads share one long-lived
// query_only connection that does not take the permit.
//
// # Schema
//
// Initialize creates missing tables and indexes, then adds any column
// introduced after a table was first created (table-driven, append-only),
// then seeds the settings row. There is no version table: every run checks
// the full list of historical columns, so a file from any older build
// catches up in one pass.
//
// # Data Location
//
// PathProvider resolves the database file: <project>/data/murmur.db in
// development, <executable dir>/data/murmur.db in production, or an
// explicit directory.
package sqlite
