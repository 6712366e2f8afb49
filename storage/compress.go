package storage

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MaxRecordSize bounds the declared size of a stored frame (1 GB).
const MaxRecordSize = 1 << 30

// Upper bounds on how much a payload can expand when decoded. A declared
// size beyond them comes from a corrupt frame.
const (
	maxLZ4Ratio     = 255
	maxDeflateRatio = 1032
)

// zstdPrealloc caps the buffer reserved up front for a zstd payload; the
// decoder grows it as needed.
const zstdPrealloc = 1 << 20

// Compression identifies how a stored record is compressed. Tags are written
// as the first byte of every frame and must not change.
type Compression uint8

const (
	// CompressNone stores the record verbatim.
	CompressNone Compression = 0
	// CompressLZ4 uses LZ4 block compression.
	CompressLZ4 Compression = 1
	// CompressZstd uses zstd at the default level.
	CompressZstd Compression = 2
	// CompressGZIP uses gzip.
	CompressGZIP Compression = 3
)

// String returns the configuration name of the scheme.
func (c Compression) String() string {
	switch c {
	case CompressNone:
		return "none"
	case CompressLZ4:
		return "lz4"
	case CompressZstd:
		return "zstd"
	case CompressGZIP:
		return "gzip"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a configuration name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressNone, nil
	case "lz4":
		return CompressLZ4, nil
	case "zstd":
		return CompressZstd, nil
	case "gzip":
		return CompressGZIP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
	}
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("storage: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxRecordSize))
	if err != nil {
		panic("storage: zstd decoder initialization failed: " + err.Error())
	}
}

// EncodeFrame compresses data with scheme and frames it as
// [tag][uvarint uncompressed size][payload]. Data that does not shrink is
// framed uncompressed.
func EncodeFrame(data []byte, scheme Compression) ([]byte, error) {
	payload, err := compress(data, scheme)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		scheme, payload = CompressNone, data
	}
	frame := make([]byte, 0, 1+binary.MaxVarintLen64+len(payload))
	frame = append(frame, byte(scheme))
	frame = binary.AppendUvarint(frame, uint64(len(data)))
	return append(frame, payload...), nil
}

// DecodeFrame reverses EncodeFrame.
func DecodeFrame(frame []byte) ([]byte, error) {
	if len(frame) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptFrame, len(frame))
	}
	scheme := Compression(frame[0])
	size, n := binary.Uvarint(frame[1:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad size", ErrCorruptFrame)
	}
	if size > MaxRecordSize {
		return nil, ErrDecompressedTooLarge
	}
	payload := frame[1+n:]
	if !plausibleSize(scheme, len(payload), size) {
		return nil, fmt.Errorf("%w: %d bytes cannot decode to %d", ErrCorruptFrame, len(payload), size)
	}
	data, err := decompress(payload, scheme, int(size))
	if err != nil {
		return nil, err
	}
	if len(data) != int(size) {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrCorruptFrame, len(data), size)
	}
	return data, nil
}

// plausibleSize reports whether a payload of n bytes can decode to size
// bytes under scheme.
func plausibleSize(scheme Compression, n int, size uint64) bool {
	switch scheme {
	case CompressNone:
		return size == uint64(n)
	case CompressLZ4:
		return size <= uint64(n)*maxLZ4Ratio
	case CompressGZIP:
		return size <= uint64(n)*maxDeflateRatio
	default:
		return true
	}
}

// compress returns nil when the scheme does not make data smaller.
func compress(data []byte, scheme Compression) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if len(data) == 0 && scheme <= CompressGZIP {
		return nil, nil
	}
	switch scheme {
	case CompressNone:
		return nil, nil
	case CompressLZ4:
		out, err = compressLZ4(data)
	case CompressZstd:
		out = zstdEncoder.EncodeAll(data, nil)
	case CompressGZIP:
		out, err = compressGZIP(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, uint8(scheme))
	}
	if err != nil {
		return nil, err
	}
	if len(out) == 0 || len(out) >= len(data) {
		return nil, nil
	}
	return out, nil
}

func decompress(payload []byte, scheme Compression, size int) ([]byte, error) {
	switch scheme {
	case CompressNone:
		return payload, nil
	case CompressLZ4:
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorruptFrame, err)
		}
		return dst[:n], nil
	case CompressZstd:
		out, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, min(size, zstdPrealloc)))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptFrame, err)
		}
		return out, nil
	case CompressGZIP:
		return decompressGZIP(payload, size)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, uint8(scheme))
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return dst[:n], nil
}

func compressGZIP(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressGZIP(data []byte, size int) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %w", ErrCorruptFrame, err)
	}
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %w", ErrCorruptFrame, err)
	}
	return out, nil
}
