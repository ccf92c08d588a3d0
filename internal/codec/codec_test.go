// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

type counters map[string]int

func TestCodec(t *testing.T) {
	state := map[string]any{
		"t":       123,
		"name":    "some-actor",
		"enabled": true,
		"ratio":   0.5,
		"tags":    []string{"a", "b"},
		"nested":  map[string]any{"recv": int64(2), "kind": label("counter")},
		"hits":    counters{"x": 1},
		"nothing": nil,
		"at":      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	for _, compression := range []Compression{NoCompression, Zstd, Brotli} {
		t.Run(string(compression), func(t *testing.T) {
			codec, err := New(compression)
			require.NoError(t, err)
			assert.Equal(t, compression, codec.Compression())

			blob, err := codec.Encode(state)
			require.NoError(t, err)

			decoded, err := codec.Decode(blob)
			require.NoError(t, err)

			assert.EqualValues(t, 123, decoded["t"])
			assert.Equal(t, "some-actor", decoded["name"])
			assert.Equal(t, true, decoded["enabled"])
			assert.Equal(t, 0.5, decoded["ratio"])
			assert.Equal(t, []any{"a", "b"}, decoded["tags"])
			assert.Equal(t, map[string]any{"recv": float64(2), "kind": "counter"}, decoded["nested"])
			assert.Equal(t, map[string]any{"x": float64(1)}, decoded["hits"])
			assert.Nil(t, decoded["nothing"])
			assert.Contains(t, decoded, "nothing")
			assert.Equal(t, "2026-01-02T03:04:05Z", decoded["at"])
		})
	}
}

func TestCodecDecodesAnyCompression(t *testing.T) {
	zstdCodec, err := New(Zstd)
	require.NoError(t, err)

	blob, err := zstdCodec.Encode(map[string]any{"k": strings.Repeat("v", 512)})
	require.NoError(t, err)

	decoded, err := Default().Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("v", 512), decoded["k"])
}

func TestCodecEmptyState(t *testing.T) {
	blob, err := Default().Encode(nil)
	require.NoError(t, err)

	decoded, err := Default().Decode(blob)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCodecRejects(t *testing.T) {
	codec := Default()

	t.Run("Unsupported value", func(t *testing.T) {
		_, err := codec.Encode(map[string]any{"ch": make(chan int)})
		require.Error(t, err)
	})
	t.Run("Non string map keys", func(t *testing.T) {
		_, err := codec.Encode(map[string]any{"m": map[int]string{1: "x"}})
		require.Error(t, err)
	})
	t.Run("Byte slices", func(t *testing.T) {
		_, err := codec.Encode(map[string]any{"raw": []byte("abc")})
		require.ErrorContains(t, err, "byte slices")
		_, err = codec.Encode(map[string]any{"nested": map[string]any{"raw": []byte{1}}})
		require.Error(t, err)
	})
	t.Run("Integers beyond float64 precision", func(t *testing.T) {
		_, err := codec.Encode(map[string]any{"big": int64(1<<53 + 1)})
		require.Error(t, err)
		_, err = codec.Encode(map[string]any{"big": uint64(1 << 60)})
		require.Error(t, err)
		_, err = codec.Encode(map[string]any{"small": int64(-(1<<53 + 1))})
		require.Error(t, err)

		blob, err := codec.Encode(map[string]any{"edge": int64(1 << 53), "n": 42})
		require.NoError(t, err)
		state, err := codec.Decode(blob)
		require.NoError(t, err)
		assert.EqualValues(t, float64(1<<53), state["edge"])
		assert.EqualValues(t, 42, state["n"])
	})
	t.Run("Short blob", func(t *testing.T) {
		_, err := codec.Decode([]byte{magic})
		require.ErrorIs(t, err, ErrCorrupted)
	})
	t.Run("Tampered payload", func(t *testing.T) {
		blob, err := codec.Encode(map[string]any{"t": 1})
		require.NoError(t, err)
		blob[len(blob)-1] ^= 0xFF
		_, err = codec.Decode(blob)
		require.ErrorIs(t, err, ErrCorrupted)
	})
	t.Run("Unknown version", func(t *testing.T) {
		blob, err := codec.Encode(map[string]any{"t": 1})
		require.NoError(t, err)
		blob[1] = 9
		_, err = codec.Decode(blob)
		require.Error(t, err)
	})
}

func TestParseCompression(t *testing.T) {
	testCases := map[string]Compression{
		"":       NoCompression,
		"none":   NoCompression,
		"ZSTD":   Zstd,
		"br":     Brotli,
		"brotli": Brotli,
	}
	for text, expected := range testCases {
		actual, err := ParseCompression(text)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}

	_, err := ParseCompression("gzip")
	require.Error(t, err)

	_, err = New("lz4")
	require.Error(t, err)
}
