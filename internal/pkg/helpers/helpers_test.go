package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("", time.Hour))
}

func TestFormatIntList(t *testing.T) {
	assert.Equal(t, "[]", FormatIntList(nil))
	assert.Equal(t, "[42]", FormatIntList([]int{42}))
	assert.Equal(t, "[42,7,101]", FormatIntList([]int{42, 7, 101}))
}

func TestFormatStringList(t *testing.T) {
	assert.Equal(t, "[]", FormatStringList(nil))
	assert.Equal(t, "[alice, bob]", FormatStringList([]string{"alice", "bob"}))
}
