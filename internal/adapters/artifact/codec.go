// Package artifact persists compiled matcher state as a single
// compressed binary file. The on-disk layout, after zstd compression,
// is a 4-byte magic, a format version byte, a little-endian header
// length, the encoded header, then each shard's payload back to back.
// Files written before the magic was introduced carry the header
// length first; Load detects those and decodes them as version 0.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/corey/termgraph/internal/ports"
)

const (
	// Version is the current artifact format version.
	Version = 1

	magic = "TGAF"
)

// ErrCorrupt reports an artifact whose bytes cannot be decoded:
// truncation, a bad length prefix, or an unsupported version.
var ErrCorrupt = errors.New("artifact: corrupt or truncated artifact")

// ErrTermTooLong reports a vocabulary the format cannot hold: strings
// are length-prefixed with 16 bits, so terms past 64KiB are a
// configuration error at save time rather than a file that never
// loads.
var ErrTermTooLong = errors.New("artifact: string exceeds 16-bit length field")

// PatternMeta records one pattern's term and the concept it maps to.
// Shard metadata in the header is ordered the same way the shard's
// automaton orders its patterns.
type PatternMeta struct {
	ConceptID uint64
	Term      string
}

// Header carries everything needed to reconstruct a sharded matcher
// apart from the shard payloads themselves.
type Header struct {
	ShardMeta        [][]PatternMeta
	Concepts         map[uint64]*ports.Concept
	TotalPatterns    uint64
	ShardByteLengths []uint64
}

// Save writes the header and shard payloads to path, creating parent
// directories as needed. The number of shard payloads must equal the
// number of recorded shard lengths; a mismatch means the caller's
// bookkeeping is broken and Save panics rather than write a file that
// can never load.
func Save(h *Header, shards [][]byte, path string) error {
	if len(shards) != len(h.ShardByteLengths) {
		panic(fmt.Sprintf("artifact: %d shard payloads but %d recorded lengths", len(shards), len(h.ShardByteLengths)))
	}
	for i, sh := range shards {
		if uint64(len(sh)) != h.ShardByteLengths[i] {
			panic(fmt.Sprintf("artifact: shard %d is %d bytes but header records %d", i, len(sh), h.ShardByteLengths[i]))
		}
	}
	if err := h.validate(); err != nil {
		return err
	}

	hdr := encodeHeader(h)
	buf := make([]byte, 0, len(magic)+1+8+len(hdr))
	buf = append(buf, magic...)
	buf = append(buf, Version)
	buf = appendUint64(buf, uint64(len(hdr)))
	buf = append(buf, hdr...)
	for _, sh := range shards {
		buf = append(buf, sh...)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("artifact: init compressor: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(buf, nil)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("artifact: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	return nil
}

// Load reads an artifact from path and returns its header and shard
// payloads. Decode failures wrap ErrCorrupt so callers can distinguish
// a damaged file from an I/O problem.
func Load(path string) (*Header, [][]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: read %s: %w", path, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: init decompressor: %w", err)
	}
	defer dec.Close()
	buf, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: decompress %s: %w", path, err)
	}

	body := buf
	if len(buf) >= len(magic)+1 && string(buf[:len(magic)]) == magic {
		version := buf[len(magic)]
		if version != Version {
			return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, version)
		}
		body = buf[len(magic)+1:]
	}

	d := &decoder{buf: body}
	hdrLen := d.uint64()
	hdrBytes := d.bytes(int(hdrLen))
	if d.err != nil {
		return nil, nil, d.err
	}
	h, err := decodeHeader(hdrBytes)
	if err != nil {
		return nil, nil, err
	}
	if len(h.ShardMeta) != len(h.ShardByteLengths) {
		return nil, nil, fmt.Errorf("%w: %d shard metas but %d shard lengths", ErrCorrupt, len(h.ShardMeta), len(h.ShardByteLengths))
	}

	shards := make([][]byte, 0, len(h.ShardByteLengths))
	for i, n := range h.ShardByteLengths {
		sh := d.bytes(int(n))
		if d.err != nil {
			return nil, nil, fmt.Errorf("%w: shard %d", ErrCorrupt, i)
		}
		shards = append(shards, sh)
	}
	return h, shards, nil
}

// Exists reports whether an artifact file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
