package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, Verify("correct horse battery", hash))
	assert.False(t, Verify("wrong password", hash))
	assert.False(t, Verify("", hash))
}

func TestHashToken_Deterministic(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	c := HashToken("another-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // hex-encoded SHA-256
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("12345678"))
	assert.False(t, Validate("1234567"))
	assert.False(t, Validate(""))
}
