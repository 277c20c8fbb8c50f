// Package memory provides in-memory implementations of driven ports.
// They back service tests and dry runs where no database file is wanted.
package memory
