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
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Compression names the algorithm applied to an encoded state payload
type Compression string

const (
	// NoCompression stores the payload as is
	NoCompression Compression = "none"
	// Zstd compresses the payload with Zstandard
	Zstd Compression = "zstd"
	// Brotli compresses the payload with Brotli
	Brotli Compression = "br"
)

// ParseCompression converts a textual compression name. The empty string means NoCompression.
func ParseCompression(text string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "none":
		return NoCompression, nil
	case "zstd":
		return Zstd, nil
	case "br", "brotli":
		return Brotli, nil
	default:
		return "", fmt.Errorf("unsupported compression %q", text)
	}
}

// frame header identifiers of each algorithm
const (
	tagNone byte = iota
	tagZstd
	tagBrotli
)

func (c Compression) tag() (byte, error) {
	switch c {
	case NoCompression, "":
		return tagNone, nil
	case Zstd:
		return tagZstd, nil
	case Brotli:
		return tagBrotli, nil
	default:
		return 0, fmt.Errorf("unsupported compression %q", string(c))
	}
}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

// zstdCodecs returns the shared encoder and decoder. EncodeAll and DecodeAll
// are safe for concurrent use. A concurrency of one keeps them free of background goroutines.
func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(64<<20))
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

var brotliWriters = sync.Pool{
	New: func() any {
		return brotli.NewWriterLevel(nil, brotli.DefaultCompression)
	},
}

func compress(tag byte, payload []byte) ([]byte, error) {
	switch tag {
	case tagNone:
		return payload, nil
	case tagZstd:
		encoder, _, err := zstdCodecs()
		if err != nil {
			return nil, err
		}
		return encoder.EncodeAll(payload, make([]byte, 0, len(payload))), nil
	case tagBrotli:
		var buf bytes.Buffer
		writer := brotliWriters.Get().(*brotli.Writer)
		defer brotliWriters.Put(writer)
		writer.Reset(&buf)
		if _, err := writer.Write(payload); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown compression tag %d", tag)
	}
}

func decompress(tag byte, payload []byte) ([]byte, error) {
	switch tag {
	case tagNone:
		return payload, nil
	case tagZstd:
		_, decoder, err := zstdCodecs()
		if err != nil {
			return nil, err
		}
		return decoder.DecodeAll(payload, nil)
	case tagBrotli:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(payload)))
	default:
		return nil, fmt.Errorf("unknown compression tag %d", tag)
	}
}
