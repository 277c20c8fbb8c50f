package driven

// SecretProtector protects secrets before they are persisted.
// The storage layer never interprets the protected format; it only
// classifies values and forwards them.
type SecretProtector interface {
	// Protect returns the protected form of plaintext.
	Protect(plaintext string) (string, error)

	// IsProtected reports whether value is already in protected form.
	IsProtected(value string) bool
}
