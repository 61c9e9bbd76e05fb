package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventKey(t *testing.T) {
	assert.Equal(t, "2024-05-01_1900", EventKey("2024-05-01", "19:00"))
	assert.Equal(t, "2024-12-31_0015", EventKey("2024-12-31", "00:15"))
}

func TestInvitationKey(t *testing.T) {
	issued := time.UnixMilli(1714590000123)
	assert.Equal(t, "band_example_com_1714590000123", InvitationKey("band@example.com", issued))
	assert.Equal(t, "_1714590000123", InvitationKey("", issued))
}
