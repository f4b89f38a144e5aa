package ui

import (
	"image/color"
	"testing"
)

func TestHexColor(t *testing.T) {
	tests := []struct {
		in       color.Color
		expected string
	}{
		{color.Black, "#000000"},
		{color.White, "#ffffff"},
		{color.NRGBA{R: 0xdd, G: 0x2a, B: 0x7b, A: 0xff}, "#dd2a7b"},
	}

	for _, test := range tests {
		if got := hexColor(test.in); got != test.expected {
			t.Errorf("hexColor(%v) = %s, expected %s", test.in, got, test.expected)
		}
	}
}
