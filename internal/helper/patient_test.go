package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCNIC(t *testing.T) {
	assert.True(t, ValidCNIC("42101-1234567-1"))
	assert.False(t, ValidCNIC("4210112345671"))
	assert.False(t, ValidCNIC("42101-123456-1"))
	assert.False(t, ValidCNIC("42101-1234567-12"))
	assert.False(t, ValidCNIC("abcde-1234567-1"))
	assert.False(t, ValidCNIC(""))
}

func TestFormatMRNumber(t *testing.T) {
	assert.Equal(t, "MR-2026-000001", FormatMRNumber(2026, 0))
	assert.Equal(t, "MR-2026-000124", FormatMRNumber(2026, 123))
}
