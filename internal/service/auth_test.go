package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTokenStable(t *testing.T) {
	h1 := HashToken("some-token")
	h2 := HashToken("some-token")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashToken("other-token"))
}

func TestGenerateToken(t *testing.T) {
	token, hash, err := generateToken()
	require.NoError(t, err)
	assert.Len(t, token, 43) // 32 bytes, base64 raw url
	assert.Equal(t, HashToken(token), hash)

	token2, _, err := generateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestGenerateCode(t *testing.T) {
	code := generateCode(6)
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
	}
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "123456", onlyDigits(" 12 34-56 "))
	assert.Equal(t, "", onlyDigits("abc"))
}

func TestEmailRegexp(t *testing.T) {
	assert.True(t, emailRegexp.MatchString("user@example.com"))
	assert.True(t, emailRegexp.MatchString("first.last+tag@sub.example.co"))
	assert.False(t, emailRegexp.MatchString("not-an-email"))
	assert.False(t, emailRegexp.MatchString("missing@tld"))
	assert.False(t, emailRegexp.MatchString("@example.com"))
}
