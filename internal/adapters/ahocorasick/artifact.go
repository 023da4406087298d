package ahocorasick

import (
	"encoding/binary"
	"fmt"

	"github.com/corey/termgraph/internal/adapters/artifact"
)

// Shard payloads store the shard's term list (u32 count, then per term
// a u16 length and the term bytes). The automaton itself is rebuilt
// from the terms on load; concept IDs come from the header metadata,
// which is ordered identically.

// SaveArtifact persists the sharded matcher to path.
func (s *ShardedMatcher) SaveArtifact(path string) error {
	h := &artifact.Header{
		Concepts:      s.concepts,
		TotalPatterns: uint64(s.total),
	}
	shards := make([][]byte, 0, len(s.shards))
	for _, shard := range s.shards {
		meta := make([]artifact.PatternMeta, len(shard.patterns))
		for i, p := range shard.patterns {
			meta[i] = artifact.PatternMeta{ConceptID: shard.ids[i], Term: p}
		}
		h.ShardMeta = append(h.ShardMeta, meta)
		payload := encodeShardTerms(shard.patterns)
		shards = append(shards, payload)
		h.ShardByteLengths = append(h.ShardByteLengths, uint64(len(payload)))
	}
	return artifact.Save(h, shards, path)
}

// LoadArtifact reconstructs a sharded matcher from a file written by
// SaveArtifact. Each shard's automaton is recompiled from its stored
// term list and revalidated against the concept index, so a header
// paired with the wrong payloads surfaces as an error instead of a
// silently wrong matcher.
func LoadArtifact(path string) (*ShardedMatcher, error) {
	h, shards, err := artifact.Load(path)
	if err != nil {
		return nil, err
	}
	s := &ShardedMatcher{concepts: h.Concepts}
	for i, payload := range shards {
		terms, err := decodeShardTerms(payload)
		if err != nil {
			return nil, fmt.Errorf("shard %d: %w", i, err)
		}
		meta := h.ShardMeta[i]
		if len(terms) != len(meta) {
			return nil, fmt.Errorf("%w: shard %d has %d terms but %d pattern metas",
				artifact.ErrCorrupt, i, len(terms), len(meta))
		}
		ids := make([]uint64, len(meta))
		for j, pm := range meta {
			if pm.Term != terms[j] {
				return nil, fmt.Errorf("%w: shard %d pattern %d is %q but meta records %q",
					artifact.ErrCorrupt, i, j, terms[j], pm.Term)
			}
			ids[j] = pm.ConceptID
		}
		shard, err := NewFromParts(terms, ids, h.Concepts)
		if err != nil {
			return nil, err
		}
		s.shards = append(s.shards, shard)
		s.total += len(terms)
	}
	if uint64(s.total) != h.TotalPatterns {
		return nil, fmt.Errorf("%w: %d patterns loaded but header records %d",
			artifact.ErrCorrupt, s.total, h.TotalPatterns)
	}
	return s, nil
}

func encodeShardTerms(terms []string) []byte {
	size := 4
	for _, t := range terms {
		size += 2 + len(t)
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(terms)))
	for _, t := range terms {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(t)))
		buf = append(buf, t...)
	}
	return buf
}

func decodeShardTerms(buf []byte) ([]string, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: shard payload too short", artifact.ErrCorrupt)
	}
	count := binary.LittleEndian.Uint32(buf)
	off := 4
	terms := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if off+2 > len(buf) {
			return nil, fmt.Errorf("%w: shard payload truncated at term %d", artifact.ErrCorrupt, i)
		}
		n := int(binary.LittleEndian.Uint16(buf[off:]))
		off += 2
		if off+n > len(buf) {
			return nil, fmt.Errorf("%w: shard payload truncated at term %d", artifact.ErrCorrupt, i)
		}
		terms = append(terms, string(buf[off:off+n]))
		off += n
	}
	if off != len(buf) {
		return nil, fmt.Errorf("%w: %d trailing shard bytes", artifact.ErrCorrupt, len(buf)-off)
	}
	return terms, nil
}
