package ports

// PasswordHasher hashes and verifies passwords with a slow, salted one-way function.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. It never errors: a
	// malformed digest or empty input simply does not match.
	Verify(plaintext, digest string) bool
}

// SessionIssuer mints and verifies signed, self-contained session tokens.
type SessionIssuer interface {
	Issue(subjectID string) (string, error)
	// Verify returns the subject id carried by token, or an error wrapping
	// domain.ErrInvalidSession.
	Verify(token string) (string, error)
}
