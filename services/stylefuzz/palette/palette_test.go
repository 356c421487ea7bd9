// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package palette

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#000000", RGB{0, 0, 0}, false},
		{"#FFFFFF", RGB{255, 255, 255}, false},
		{"#abc", RGB{0xaa, 0xbb, 0xcc}, false},
		{"#1a2B3c", RGB{0x1a, 0x2b, 0x3c}, false},
		{"red", RGB{}, true},
		{"#zzzzzz", RGB{}, true},
		{"", RGB{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		c := RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		got, err := ParseHex(c.Hex())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	short, err := ParseHex("#ABC")
	require.NoError(t, err)
	assert.Equal(t, "#aabbcc", short.Hex())
}

func TestHSVRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		c := RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		assert.Equal(t, c, c.HSV().RGB(), "color %s", c.Hex())
	}
}

func TestRotateHue_TwiceByHalfIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		h := HSV{H: rng.Float64(), S: rng.Float64(), V: rng.Float64()}
		back := h.RotateHue(0.5).RotateHue(0.5)
		assert.InDelta(t, h.H, back.H, 1e-6)
		assert.Equal(t, h.S, back.S)
		assert.Equal(t, h.V, back.V)
	}
}

func TestRotateHue_Wraps(t *testing.T) {
	h := HSV{H: 0.75}.RotateHue(0.5)
	assert.InDelta(t, 0.25, h.H, 1e-12)
	h = HSV{H: 0.25}.RotateHue(-0.5)
	assert.InDelta(t, 0.75, h.H, 1e-12)
}

func TestComplementOfRGBRoundTrips(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		c := RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		once := c.HSV().RotateHue(0.5).RGB()
		twice := once.HSV().RotateHue(0.5).RGB()
		assert.Equal(t, c, twice, "color %s", c.Hex())
	}
}

func TestContrastRatio(t *testing.T) {
	black := RGB{0, 0, 0}
	white := RGB{255, 255, 255}

	assert.InDelta(t, 21.0, ContrastRatio(black, white), 1e-9)
	assert.Equal(t, ContrastRatio(black, white), ContrastRatio(white, black))
	assert.Equal(t, 1.0, ContrastRatio(white, white))

	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 100; i++ {
		a := RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		b := RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		assert.Equal(t, ContrastRatio(a, b), ContrastRatio(b, a))
		assert.Equal(t, 1.0, ContrastRatio(a, a))
	}
}

func TestHexContrastRatio(t *testing.T) {
	r, err := HexContrastRatio("#000", "#fff")
	require.NoError(t, err)
	assert.InDelta(t, 21.0, r, 1e-9)

	_, err = HexContrastRatio("black", "#fff")
	assert.Error(t, err)
}
