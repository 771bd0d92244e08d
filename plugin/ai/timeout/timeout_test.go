package timeout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "reunião", Truncate("reunião"))

	long := strings.Repeat("ç", MaxTruncateLength+5)
	got := Truncate(long)
	assert.Equal(t, MaxTruncateLength+3, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}
