package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/vecid/internal/conv"
	"github.com/hupe1980/vecid/internal/hash"
	"github.com/hupe1980/vecid/payload"
)

// ErrCorruptArchive is returned when an archive fails structural or checksum
// validation.
var ErrCorruptArchive = errors.New("corrupt payload archive")

const (
	// ArchiveVersion is the current archive format version.
	ArchiveVersion = 1

	// MaxArchivePayloads bounds the payload count of a single archive.
	MaxArchivePayloads = 1 << 20

	maxArchiveBodySize = MaxArchivePayloads * payload.CompactSize
)

var archiveMagic = [4]byte{'V', 'I', 'D', 'A'}

// Archive layout (little-endian):
//
//	[0:4]    magic "VIDA"
//	[4]      version
//	[5]      compression
//	[6:8]    reserved, zero
//	[8:12]   payload count
//	[12:16]  CRC32C of the body
//	[16:]    body: one block holding count concatenated compact payloads
const archiveHeaderSize = 16

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptArchive, fmt.Sprintf(format, args...))
}

// EncodeArchive bundles payloads into a single compressed archive.
func EncodeArchive(payloads []*payload.Payload, c Compression) ([]byte, error) {
	if len(payloads) > MaxArchivePayloads {
		return nil, fmt.Errorf("archive holds at most %d payloads, got %d", MaxArchivePayloads, len(payloads))
	}
	count, err := conv.IntToUint32(len(payloads))
	if err != nil {
		return nil, err
	}
	size, err := conv.MulInt(len(payloads), payload.CompactSize)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 0, size)
	codec := payload.Compact{}
	for i, p := range payloads {
		b, err := codec.Encode(p)
		if err != nil {
			return nil, fmt.Errorf("archive payload %d: %w", i, err)
		}
		raw = append(raw, b...)
	}

	body, err := compressBlock(raw, c)
	if err != nil {
		return nil, err
	}

	out := make([]byte, archiveHeaderSize, archiveHeaderSize+len(body))
	copy(out, archiveMagic[:])
	out[4] = ArchiveVersion
	out[5] = byte(c)
	binary.LittleEndian.PutUint32(out[8:], count)
	binary.LittleEndian.PutUint32(out[12:], hash.CRC32C(body))
	return append(out, body...), nil
}

// DecodeArchive validates and unpacks an archive.
func DecodeArchive(data []byte) ([]*payload.Payload, error) {
	if len(data) < archiveHeaderSize {
		return nil, corrupt("archive too short: %d bytes", len(data))
	}
	if [4]byte(data[:4]) != archiveMagic {
		return nil, corrupt("bad magic")
	}
	if data[4] != ArchiveVersion {
		return nil, corrupt("unsupported archive version %d", data[4])
	}
	c := Compression(data[5])

	count, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[8:]))
	if err != nil {
		return nil, corrupt("%v", err)
	}
	if count > MaxArchivePayloads {
		return nil, corrupt("payload count %d exceeds %d", count, MaxArchivePayloads)
	}
	size, err := conv.MulInt(count, payload.CompactSize)
	if err != nil {
		return nil, corrupt("%v", err)
	}

	body := data[archiveHeaderSize:]
	if !hash.Verify(body, binary.LittleEndian.Uint32(data[12:])) {
		return nil, corrupt("checksum mismatch")
	}

	raw, err := decompressBlock(body, c, size)
	if err != nil {
		return nil, corrupt("%v", err)
	}

	out := make([]*payload.Payload, count)
	codec := payload.Compact{}
	for i := range out {
		p, err := codec.Decode(raw[i*payload.CompactSize : (i+1)*payload.CompactSize])
		if err != nil {
			return nil, fmt.Errorf("%w: payload %d: %w", ErrCorruptArchive, i, err)
		}
		out[i] = p
	}
	return out, nil
}
