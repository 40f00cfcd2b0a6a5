package brdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "52998224725", Sanitize("529.982.247-25"))
	assert.Equal(t, "11444777000161", Sanitize("11.444.777/0001-61"))
	assert.Equal(t, "", Sanitize("abc"))
}

func TestValidCPF(t *testing.T) {
	assert.True(t, ValidCPF("52998224725"))
	assert.False(t, ValidCPF("52998224724"))
	assert.False(t, ValidCPF("11111111111"))
	assert.False(t, ValidCPF("123"))
	assert.False(t, ValidCPF(""))
}

func TestValidCNPJ(t *testing.T) {
	assert.True(t, ValidCNPJ("11444777000161"))
	assert.False(t, ValidCNPJ("11444777000160"))
	assert.False(t, ValidCNPJ("00000000000000"))
	assert.False(t, ValidCNPJ("114447770001"))
}
