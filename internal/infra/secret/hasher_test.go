package secret

import (
	"bytes"
	"crypto/rand"
	"regexp"
	"strconv"
	"testing"

	"reportshare/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var passcodePattern = regexp.MustCompile(`^\d{6}$`)

func newTestHasher(t *testing.T) *pepperedHasher {
	t.Helper()

	h, err := newPepperedHasher("test-pepper", rand.Reader)
	require.NoError(t, err)

	return h
}

func TestNewPepperedHasher_RequiresPepper(t *testing.T) {
	_, err := NewPepperedHasher(&config.Config{})
	assert.Error(t, err)

	h, err := NewPepperedHasher(&config.Config{SecretKey: config.SecretKeyConfig{Pepper: "p"}})
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestHashWithPepper(t *testing.T) {
	digest := HashWithPepper("secret", "pepper")

	assert.Len(t, digest, 64)
	assert.Equal(t, digest, HashWithPepper("secret", "pepper"))
	assert.NotEqual(t, digest, HashWithPepper("secret2", "pepper"))
	assert.NotEqual(t, digest, HashWithPepper("secret", "pepper2"))
	assert.NotContains(t, digest, "secret")
}

func TestPepperedHasher_HashUsesPepper(t *testing.T) {
	h := newTestHasher(t)

	assert.Equal(t, HashWithPepper("abc", "test-pepper"), h.Hash("abc"))
	assert.NotEqual(t, HashWithPepper("abc", ""), h.Hash("abc"))
}

func TestPepperedHasher_Equal(t *testing.T) {
	h := newTestHasher(t)

	assert.True(t, h.Equal(h.Hash("123456"), h.Hash("123456")))
	assert.False(t, h.Equal(h.Hash("123456"), h.Hash("123457")))
	assert.False(t, h.Equal(h.Hash("123456"), ""))
}

func TestPepperedHasher_GenerateToken(t *testing.T) {
	h := newTestHasher(t)

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		token, err := h.GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 43)
		seen[token] = struct{}{}
	}

	assert.Len(t, seen, 1000)
}

func TestPepperedHasher_GenerateTokenFailsOnShortRead(t *testing.T) {
	h, err := newPepperedHasher("p", bytes.NewReader([]byte{1, 2, 3}))
	require.NoError(t, err)

	_, err = h.GenerateToken()
	assert.Error(t, err)
}

func TestPepperedHasher_GeneratePasscode(t *testing.T) {
	h := newTestHasher(t)

	firstDigits := make(map[byte]int)
	for range 2000 {
		code, err := h.GeneratePasscode()
		require.NoError(t, err)
		require.Regexp(t, passcodePattern, code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.Less(t, n, 1_000_000)
		firstDigits[code[0]]++
	}

	// Leading zeros must be possible, and every leading digit should show up.
	assert.Len(t, firstDigits, 10)
}

func TestPepperedHasher_GeneratePasscodeZeroPads(t *testing.T) {
	// Zero bytes make rand.Int yield 0.
	h, err := newPepperedHasher("p", bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)

	code, err := h.GeneratePasscode()
	require.NoError(t, err)
	assert.Equal(t, "000000", code)
}
