// Package secret provides the peppered hashing and random generation of link secrets.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"reportshare/config"
	"reportshare/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	tokenBytes     = 32
	passcodeDigits = 6
)

var passcodeSpace = big.NewInt(1_000_000)

// HashWithPepper returns hex(SHA-256(pepper || secret)).
func HashWithPepper(secret, pepper string) string {
	h := sha256.New()
	h.Write([]byte(pepper))
	h.Write([]byte(secret))

	return hex.EncodeToString(h.Sum(nil))
}

type pepperedHasher struct {
	pepper string
	random io.Reader
}

// NewPepperedHasher creates a SecretHasher keyed by the configured pepper.
func NewPepperedHasher(cfg *config.Config) (service.SecretHasher, error) {
	return newPepperedHasher(cfg.SecretKey.Pepper, rand.Reader)
}

func newPepperedHasher(pepper string, random io.Reader) (*pepperedHasher, error) {
	if pepper == "" {
		return nil, errors.New("secret pepper must be provided")
	}

	return &pepperedHasher{pepper: pepper, random: random}, nil
}

// Hash returns the peppered digest of secret.
func (h *pepperedHasher) Hash(secret string) string {
	return HashWithPepper(secret, h.pepper)
}

// Equal compares two digests in constant time.
func (h *pepperedHasher) Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// GenerateToken returns 256 random bits as 43 characters of unpadded base64url.
func (h *pepperedHasher) GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(h.random, buf); err != nil {
		return "", errors.Wrap(err, "failed to read random token")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GeneratePasscode returns a uniform 6-digit passcode. rand.Int rejects out-of-range
// samples, so no value is favoured.
func (h *pepperedHasher) GeneratePasscode() (string, error) {
	n, err := rand.Int(h.random, passcodeSpace)
	if err != nil {
		return "", errors.Wrap(err, "failed to read random passcode")
	}

	return fmt.Sprintf("%0*d", passcodeDigits, n.Int64()), nil
}
