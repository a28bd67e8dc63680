package service

// SecretHasher turns link secrets into peppered one-way digests and produces fresh secrets.
type SecretHasher interface {
	// Hash returns the fixed-length digest of secret under the server pepper.
	Hash(secret string) string

	// Equal compares two digests without short-circuiting.
	Equal(a, b string) bool

	// GenerateToken returns a new random link token with at least 256 bits of entropy.
	GenerateToken() (string, error)

	// GeneratePasscode returns a uniformly distributed, zero-padded 6-digit passcode.
	GeneratePasscode() (string, error)
}
