// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never touch SQL or files directly. Everything outside the
// core arrives through driven ports.
package services
