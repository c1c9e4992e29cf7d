package store

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the archive body compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxArchiveBodySize),
	)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block format: [compressedSize uint32][data...]. compressedSize == 0 means the data
// is stored uncompressed because compression did not help.
const blockHeaderSize = 4

// lz4MaxRatio is the largest expansion an LZ4 block can encode per input byte.
const lz4MaxRatio = 255

func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}

	// Store uncompressed when compression doesn't help (ratio > 0.9).
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, blockHeaderSize+len(data))
		copy(out[blockHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out, uint32(len(compressed)))
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

// decompressBlock returns exactly size bytes or an error.
func decompressBlock(block []byte, c Compression, size int) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("block too small for header")
	}
	compressedSize := int(binary.LittleEndian.Uint32(block))
	data := block[blockHeaderSize:]

	if compressedSize == 0 {
		if len(data) != size {
			return nil, fmt.Errorf("stored block: got %d bytes, want %d", len(data), size)
		}
		return data, nil
	}
	if compressedSize != len(data) {
		return nil, fmt.Errorf("compressed block: got %d bytes, header says %d", len(data), compressedSize)
	}

	switch c {
	case CompressionLZ4:
		if size > len(data)*lz4MaxRatio {
			return nil, fmt.Errorf("lz4 block of %d bytes cannot expand to %d", len(data), size)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, err
		}
		if n != size {
			return nil, fmt.Errorf("decompressed size mismatch: %d != %d", n, size)
		}
		return out, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
		if len(out) != size {
			return nil, fmt.Errorf("decompressed size mismatch: %d != %d", len(out), size)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}
