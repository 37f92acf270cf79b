package randstr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomString(t *testing.T) {
	alphabet := []byte("ABC123")
	g := New(alphabet)

	for _, length := range []int{1, 6, 32} {
		s := g.GenerateRandomString(length)
		assert.Len(t, s, length)

		for i := 0; i < len(s); i++ {
			assert.True(t, bytes.ContainsRune(alphabet, rune(s[i])), "character %q outside alphabet", s[i])
		}
	}

	assert.Empty(t, g.GenerateRandomString(0))
}
