package artifact

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/corey/termgraph/internal/ports"
)

// Header wire layout, all integers little-endian:
//
//	u32 shard count
//	  per shard: u32 pattern count, then per pattern u64 id, u16 term len, term bytes
//	u32 concept count
//	  per concept: u64 id, u16+label, u16+preferred term, u16+url,
//	               u32 term count, then per term u16 len, term bytes
//	u64 total patterns
//	u32 shard length count, then per shard u64 byte length
//
// Concepts and their term sets are written in sorted order so the same
// header always encodes to the same bytes.

// validate rejects headers that cannot survive a round trip. Every
// string is written behind a 16-bit length, so anything longer would
// be silently truncated at encode time and fail to decode.
func (h *Header) validate() error {
	for i, shard := range h.ShardMeta {
		for _, pm := range shard {
			if len(pm.Term) > math.MaxUint16 {
				return fmt.Errorf("%w: shard %d term is %d bytes", ErrTermTooLong, i, len(pm.Term))
			}
		}
	}
	for id, c := range h.Concepts {
		if len(c.Label) > math.MaxUint16 {
			return fmt.Errorf("%w: concept %d label is %d bytes", ErrTermTooLong, id, len(c.Label))
		}
		if len(c.PreferredTerm) > math.MaxUint16 {
			return fmt.Errorf("%w: concept %d preferred term is %d bytes", ErrTermTooLong, id, len(c.PreferredTerm))
		}
		if len(c.URL) > math.MaxUint16 {
			return fmt.Errorf("%w: concept %d url is %d bytes", ErrTermTooLong, id, len(c.URL))
		}
		for t := range c.Terms {
			if len(t) > math.MaxUint16 {
				return fmt.Errorf("%w: concept %d term is %d bytes", ErrTermTooLong, id, len(t))
			}
		}
	}
	return nil
}

func encodeHeader(h *Header) []byte {
	buf := make([]byte, 0, 256)

	buf = appendUint32(buf, uint32(len(h.ShardMeta)))
	for _, shard := range h.ShardMeta {
		buf = appendUint32(buf, uint32(len(shard)))
		for _, pm := range shard {
			buf = appendUint64(buf, pm.ConceptID)
			buf = appendString(buf, pm.Term)
		}
	}

	ids := make([]uint64, 0, len(h.Concepts))
	for id := range h.Concepts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	buf = appendUint32(buf, uint32(len(ids)))
	for _, id := range ids {
		c := h.Concepts[id]
		buf = appendUint64(buf, c.ID)
		buf = appendString(buf, c.Label)
		buf = appendString(buf, c.PreferredTerm)
		buf = appendString(buf, c.URL)
		terms := make([]string, 0, len(c.Terms))
		for t := range c.Terms {
			terms = append(terms, t)
		}
		sort.Strings(terms)
		buf = appendUint32(buf, uint32(len(terms)))
		for _, t := range terms {
			buf = appendString(buf, t)
		}
	}

	buf = appendUint64(buf, h.TotalPatterns)
	buf = appendUint32(buf, uint32(len(h.ShardByteLengths)))
	for _, n := range h.ShardByteLengths {
		buf = appendUint64(buf, n)
	}
	return buf
}

func decodeHeader(buf []byte) (*Header, error) {
	d := &decoder{buf: buf}
	h := &Header{Concepts: make(map[uint64]*ports.Concept)}

	shardCount := d.uint32()
	for i := uint32(0); i < shardCount && d.err == nil; i++ {
		patternCount := d.uint32()
		shard := make([]PatternMeta, 0, patternCount)
		for j := uint32(0); j < patternCount && d.err == nil; j++ {
			pm := PatternMeta{ConceptID: d.uint64(), Term: d.string()}
			shard = append(shard, pm)
		}
		h.ShardMeta = append(h.ShardMeta, shard)
	}

	conceptCount := d.uint32()
	for i := uint32(0); i < conceptCount && d.err == nil; i++ {
		c := &ports.Concept{
			ID:            d.uint64(),
			Label:         d.string(),
			PreferredTerm: d.string(),
			URL:           d.string(),
			Terms:         make(map[string]bool),
		}
		termCount := d.uint32()
		for j := uint32(0); j < termCount && d.err == nil; j++ {
			c.Terms[d.string()] = true
		}
		h.Concepts[c.ID] = c
	}

	h.TotalPatterns = d.uint64()
	lengthCount := d.uint32()
	for i := uint32(0); i < lengthCount && d.err == nil; i++ {
		h.ShardByteLengths = append(h.ShardByteLengths, d.uint64())
	}

	if d.err != nil {
		return nil, d.err
	}
	if d.off != len(d.buf) {
		return nil, fmt.Errorf("%w: %d trailing header bytes", ErrCorrupt, len(d.buf)-d.off)
	}
	return h, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func appendUint64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// decoder walks a byte slice with bounds checking, latching the first
// error so callers can read a whole structure and check once.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	// n > len-off, not off+n > len: the sum overflows for huge
	// declared lengths in corrupt input.
	if n < 0 || n > len(d.buf)-d.off {
		d.err = fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrCorrupt, n, d.off, len(d.buf))
		return false
	}
	return true
}

func (d *decoder) uint16() uint16 {
	if !d.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(d.buf[d.off:])
	d.off += 2
	return v
}

func (d *decoder) uint32() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v
}

func (d *decoder) uint64() uint64 {
	if !d.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(d.buf[d.off:])
	d.off += 8
	return v
}

func (d *decoder) bytes(n int) []byte {
	if !d.need(n) {
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) string() string {
	n := int(d.uint16())
	return string(d.bytes(n))
}
