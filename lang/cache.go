package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed templates keyed by the combined hash of source
// text and the options that affect parsing.
var globalCache sync.Map

// entry is the parse result for one cache key. The template it holds is
// shared by every caller and must be treated as read-only.
type entry struct {
	once sync.Once
	tmpl *Template
	err  error
}

// hashOptions encodes the parse-affecting options using gob and hashes with
// xxh3.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(int(o.class))
	_ = enc.Encode(o.maxDepth)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader parses a template read from r.
//
// Parsed templates are cached by source and parse options, so repeated
// sources are parsed once. The returned template may be shared with other
// callers and must not be modified.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Template, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true))

	return parseCached(ctx, o, string(data), opts...)
}

// parseCached parses source at most once per distinct set of parse options.
func parseCached(
	ctx context.Context,
	o options,
	source string,
	opts ...Option,
) (*Template, error) {
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(o)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := globalCache.LoadOrStore(key, new(entry))

	e, ok := value.(*entry)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid cache entry type"))
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit))

	e.once.Do(func() {
		e.tmpl, e.err = ParseString(ctx, source, opts...)
	})

	if e.err != nil {
		return nil, e.err
	}

	return e.tmpl, nil
}

// ClearCache removes all cached templates.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
