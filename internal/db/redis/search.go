package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/Coder-RL/docs-mcp-server/internal/db"
)

// scoreAlias names the KNN distance column in FT.SEARCH replies.
const scoreAlias = "__vector_score"

// SearchKNN returns the K passages nearest to q.Vector among those
// matching q.Tags. Scores are cosine similarities clamped to [0,1].
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	switch {
	case q.IndexName == "":
		return nil, errors.New("index name is required")
	case len(q.Vector) == 0:
		return nil, errors.New("vector is required")
	case q.K <= 0:
		return nil, errors.New("k must be positive")
	}

	expr := fmt.Sprintf("[KNN %d @vector $BLOB AS %s]", q.K, scoreAlias)
	if pre := tagExpr(q.Tags); pre != "" {
		expr = "(" + pre + ")=>" + expr
	} else {
		expr = "*=>" + expr
	}

	args := []string{q.IndexName, expr}
	if n := len(q.ReturnFields); n > 0 {
		args = append(args, "RETURN", strconv.Itoa(n+1), scoreAlias)
		args = append(args, q.ReturnFields...)
	}
	args = append(args,
		"SORTBY", scoreAlias,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", float32Blob(q.Vector),
		"DIALECT", "2",
	)

	raw, err := s.search(ctx, args)
	if err != nil {
		return nil, err
	}
	res, err := readSearchReply(raw, true)
	if err != nil {
		return nil, err
	}
	for i := range res.Entries {
		e := &res.Entries[i]
		if d, ok := e.Fields[scoreAlias]; ok {
			if dist, perr := strconv.ParseFloat(d, 64); perr == nil {
				e.Score = max(0, 1-dist)
			}
			delete(e.Fields, scoreAlias)
		}
	}
	return res, nil
}

// SearchKeys pages through the keys of documents matching q.Tags.
// No tags matches the whole index.
func (s *Store) SearchKeys(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	switch {
	case q.IndexName == "":
		return nil, errors.New("index name is required")
	case q.Limit <= 0:
		return nil, errors.New("limit must be positive")
	}

	expr := tagExpr(q.Tags)
	if expr == "" {
		expr = "*"
	}
	raw, err := s.search(ctx, []string{
		q.IndexName, expr, "NOCONTENT",
		"LIMIT", strconv.Itoa(max(q.Offset, 0)), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	})
	if err != nil {
		return nil, err
	}
	return readSearchReply(raw, false)
}

func (s *Store) search(ctx context.Context, args []string) ([]rueidis.RedisMessage, error) {
	raw, err := s.do(ctx, s.b().Arbitrary(db.OpSearch).Args(args...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return raw, nil
}

// readSearchReply decodes a RESP2 FT.SEARCH reply: the total, then every
// key followed by its field list when withFields is set. Malformed
// entries are skipped.
func readSearchReply(raw []rueidis.RedisMessage, withFields bool) (*db.SearchResult, error) {
	res := &db.SearchResult{}
	if len(raw) == 0 {
		return res, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	res.Total = int(total)

	step := 1
	if withFields {
		step = 2
	}
	for i := 1; i+step-1 < len(raw); i += step {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		entry := db.SearchEntry{Key: key}
		if withFields {
			pairs, err := raw[i+1].ToArray()
			if err != nil {
				continue
			}
			entry.Fields = fieldMap(pairs)
		}
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func fieldMap(pairs []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		k, kerr := pairs[i].ToString()
		v, verr := pairs[i+1].ToString()
		if kerr == nil && verr == nil {
			m[k] = v
		}
	}
	return m
}

// tagExpr renders "@f1:{v1} @f2:{v2}"; adjacent terms are ANDed.
func tagExpr(tags []db.TagFilter) string {
	var sb strings.Builder
	for i, t := range tags {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("@" + t.Field + ":{")
		escapeTag(&sb, t.Value)
		sb.WriteByte('}')
	}
	return sb.String()
}

// escapeTag backslash-escapes ASCII punctuation and spaces, which the
// query parser otherwise treats as tag separators or operators.
func escapeTag(sb *strings.Builder, v string) {
	for _, r := range v {
		if r < 0x80 && r != '_' && !isAlnum(r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// float32Blob packs v as little-endian FLOAT32, the PARAMS encoding of
// a query vector.
func float32Blob(v []float32) string {
	buf := make([]byte, 0, 4*len(v))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return string(buf)
}
