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

// Package codec defines how actor state is turned into a storable blob.
//
// State is a map of string keys to self-describing values (nil, bool, numbers,
// strings, lists and nested maps). It is encoded as a protobuf Struct, optionally
// compressed, and wrapped in a small frame:
//
//	magic(1) | version(1) | compression(1) | xxh3(payload)(8) | payload
//
// Numbers come back as float64, the way a protobuf Struct carries them, so
// integers outside ±2^53 are rejected instead of silently losing precision.
// Byte slices are rejected as well: encode them as strings (base64 for
// binary data) so that they read back as they were written.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/zeebo/xxh3"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxExactInt is the largest integer a float64 holds exactly
const maxExactInt = 1 << 53

const (
	magic      byte = 0xAC
	version    byte = 1
	headerSize      = 11
)

// ErrCorrupted is returned when a blob fails the frame or checksum validation
var ErrCorrupted = errors.New("codec: corrupted state blob")

// Codec encodes and decodes actor state
type Codec struct {
	compression Compression
	tag         byte
}

// New creates a Codec compressing payloads with the given algorithm
func New(compression Compression) (*Codec, error) {
	tag, err := compression.tag()
	if err != nil {
		return nil, err
	}
	if compression == "" {
		compression = NoCompression
	}
	return &Codec{compression: compression, tag: tag}, nil
}

// Default returns a Codec without compression
func Default() *Codec {
	return &Codec{compression: NoCompression, tag: tagNone}
}

// Compression returns the algorithm used when encoding
func (c *Codec) Compression() Compression {
	return c.compression
}

// Encode turns the state into a framed blob. A nil state encodes as an empty one.
func (c *Codec) Encode(state map[string]any) ([]byte, error) {
	normalized, err := normalizeMap(state)
	if err != nil {
		return nil, err
	}

	value, err := structpb.NewStruct(normalized)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to convert state: %w", err)
	}

	payload, err := proto.MarshalOptions{Deterministic: true}.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to marshal state: %w", err)
	}

	payload, err = compress(c.tag, payload)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to compress state: %w", err)
	}

	blob := make([]byte, headerSize, headerSize+len(payload))
	blob[0] = magic
	blob[1] = version
	blob[2] = c.tag
	binary.BigEndian.PutUint64(blob[3:headerSize], xxh3.Hash(payload))
	return append(blob, payload...), nil
}

// Decode restores the state from a blob produced by any Codec,
// whatever compression it was written with.
func (c *Codec) Decode(blob []byte) (map[string]any, error) {
	if len(blob) < headerSize || blob[0] != magic {
		return nil, ErrCorrupted
	}

	if blob[1] != version {
		return nil, fmt.Errorf("codec: unsupported version %d", blob[1])
	}

	payload := blob[headerSize:]
	if binary.BigEndian.Uint64(blob[3:headerSize]) != xxh3.Hash(payload) {
		return nil, ErrCorrupted
	}

	payload, err := decompress(blob[2], payload)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to decompress state: %w", err)
	}

	value := new(structpb.Struct)
	if err := proto.Unmarshal(payload, value); err != nil {
		return nil, fmt.Errorf("codec: failed to unmarshal state: %w", err)
	}
	return value.AsMap(), nil
}

// normalizeMap rewrites named map and slice types into the plain shapes
// accepted by structpb.
func normalizeMap(state map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(state))
	for key, value := range state {
		normalized, err := normalize(value)
		if err != nil {
			return nil, fmt.Errorf("codec: key %q: %w", key, err)
		}
		out[key] = normalized
	}
	return out, nil
}

func normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil, bool, string,
		int8, int16, int32, uint8, uint16, uint32,
		float32, float64:
		return v, nil
	case []byte:
		return nil, errors.New("byte slices are not supported, encode them as a string")
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	case time.Duration:
		return v.String(), nil
	case map[string]any:
		return normalizeMap(v)
	case []any:
		return normalizeSlice(reflect.ValueOf(v))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			normalized, err := normalize(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = normalized
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		return normalizeSlice(rv)
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n > maxExactInt || n < -maxExactInt {
			return nil, fmt.Errorf("integer %d does not fit a float64 exactly", n)
		}
		return n, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > maxExactInt {
			return nil, fmt.Errorf("integer %d does not fit a float64 exactly", n)
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return normalize(rv.Elem().Interface())
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func normalizeSlice(rv reflect.Value) ([]any, error) {
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		normalized, err := normalize(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = normalized
	}
	return out, nil
}
