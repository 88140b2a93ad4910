package security

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCodeFormat(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestCodesEqual(t *testing.T) {
	assert.True(t, CodesEqual("004211", "004211"))
	assert.False(t, CodesEqual("004211", " 004211"))
	assert.False(t, CodesEqual("004211", "004211\n"))
	assert.False(t, CodesEqual("004211", "4211"))
	assert.False(t, CodesEqual("004211", "004212"))
	assert.False(t, CodesEqual("", ""))
}
