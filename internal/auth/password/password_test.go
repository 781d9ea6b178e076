package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	encoded, err := Hash("s3cret-value")
	require.NoError(t, err)
	assert.True(t, Verify("s3cret-value", encoded))
	assert.False(t, Verify("other", encoded))
	assert.False(t, Verify("s3cret-value", "$bcrypt$bad"))
}

func TestNeedsRehash(t *testing.T) {
	cheap := Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8}
	encoded, err := HashWith("s3cret-value", cheap)
	require.NoError(t, err)

	assert.True(t, Verify("s3cret-value", encoded))
	assert.False(t, NeedsRehash(encoded, cheap))
	assert.True(t, NeedsRehash(encoded, DefaultParams))
	assert.True(t, NeedsRehash("garbage", DefaultParams))
}
