package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	passwordHash, err := HashPassword("runner-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, passwordHash)
	assert.True(t, CheckPasswordHash("runner-pass", passwordHash))
	assert.False(t, CheckPasswordHash("wrong-pass", passwordHash))

	otherHash, err := HashPassword("runner-pass")
	require.NoError(t, err)
	// bcrypt salts every hash
	assert.NotEqual(t, passwordHash, otherHash)
	assert.True(t, CheckPasswordHash("runner-pass", otherHash))
}
