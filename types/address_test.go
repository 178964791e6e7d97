package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_TextRoundTrip(t *testing.T) {
	var a Address
	for i := range a {
		a[i] = byte(i + 1)
	}

	parsed, err := ParseAddress(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestParseAddress_RejectsWrongLength(t *testing.T) {
	_, err := ParseAddress("3mJr7AoUXx2Wqd")
	assert.Error(t, err)

	_, err = ParseAddress("0OIl")
	assert.Error(t, err)
}

func TestPool_CloneIsDeep(t *testing.T) {
	p := &Pool{SupportedAssets: []SupportedAsset{{RewardRate: 1}}}
	cp := p.Clone()
	cp.SupportedAssets[0].TotalStaked = 10

	assert.Equal(t, uint64(0), p.SupportedAssets[0].TotalStaked)

	idx, ok := cp.FindAsset(ZeroAddress)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}
