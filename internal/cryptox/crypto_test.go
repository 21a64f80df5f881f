package cryptox

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	ok, err := CheckPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "Tr0ub4dor&3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("p", MaxPasswordBytes+1))
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = HashPassword(strings.Repeat("p", MaxPasswordBytes))
	require.NoError(t, err)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	ok, err := CheckPassword("short", "whatever")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenDigest(t *testing.T) {
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", TokenDigest("abc"))
	assert.NotEqual(t, TokenDigest("a"), TokenDigest("b"))
	assert.Len(t, TokenDigest(""), 64)
}
