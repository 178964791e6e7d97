package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0", 0, false},
		{"1_000", 1_000, false},
		{" 42 ", 42, false},
		{"18446744073709551615", 18446744073709551615, false},
		{"18446744073709551616", 0, true},
		{"-1", 0, true},
		{"1.5", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "999", FormatAmount(999))
	assert.Equal(t, "1_000", FormatAmount(1_000))
	assert.Equal(t, "12_345_678", FormatAmount(12_345_678))
	assert.Equal(t, "100_000", FormatAmount(100_000))
}

func TestShortenLog(t *testing.T) {
	assert.Equal(t, "abc", ShortenLog("abc"))
	assert.Equal(t, "abcd...mnop", ShortenLog("abcdefghijklmnop"))
	assert.Equal(t, "12345678...ghijklmn", ShortenLog("12345678901234567890abcdefghijklmn"))
}
