package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a****@example.com", MaskEmail("alice@example.com"))
	assert.Equal(t, "", MaskEmail("  "))
	assert.Equal(t, "****", MaskEmail("abc"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "inv_****cdef", MaskSecret("inv_0123456789abcdef"))
	assert.Equal(t, "****", MaskSecret("abcd"))
}
