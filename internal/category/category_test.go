package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAll(t *testing.T) {
	all := All()
	assert.Len(t, all, 32)
	assert.Equal(t, "ADMINISTRATIVE_AREA_1", all[0])
	assert.Equal(t, "YEAR_OF_BIRTH", all[len(all)-1])

	// callers get a copy
	all[0] = "CHANGED"
	assert.Equal(t, "ADMINISTRATIVE_AREA_1", All()[0])
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown("EMAIL"))
	assert.True(t, IsKnown("PHONE_NUMBER"))
	assert.False(t, IsKnown("email"))
	assert.False(t, IsKnown(""))
	assert.False(t, IsKnown("CREDIT_SCORE"))
}
