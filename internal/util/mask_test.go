package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("aaa.bbb.ccc")
	assert.Len(t, a, 12)
	assert.Equal(t, a, Fingerprint(" aaa.bbb.ccc "))
	assert.NotEqual(t, a, Fingerprint("aaa.bbb.ccd"))
	assert.Empty(t, Fingerprint(""))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "***", MaskToken("short"))
	assert.Equal(t, "eyJh…Qx9w", MaskToken("eyJhbGciOiJSUzI1NiJ9.Qx9w"))
}
