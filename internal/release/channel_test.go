package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelFor(t *testing.T) {
	tests := []struct {
		version string
		want    Channel
	}{
		{"1.5.6", Stable},
		{"0.0.1", Stable},
		{"1.5.0-beta10", Beta},
		{"2.0.0-beta", Beta},
		{"1.7.0-dev-5340c91", Dev},
		{"1.7.0-rc1", Dev},
		{"5340c916", Dev},
		{"", Dev},
		{"1.5", Dev},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, ChannelFor(tt.version))
		})
	}
}

func TestIsReleased(t *testing.T) {
	assert.True(t, IsReleased("1.5.6"))
	assert.True(t, IsReleased("1.5.0-beta10"))
	assert.False(t, IsReleased("1.7.0-dev-5340c91"))
	assert.False(t, IsReleased("5340c916"))
}
