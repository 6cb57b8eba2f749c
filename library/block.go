package library

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Block format markers.
const (
	markerPrefix = "%"
	markerEnd    = "end"
)

// maxLineLength bounds a single line of a block library.
const maxLineLength = 1 << 20

// block is one "% sub" or "% temp" definition read from a block library.
type block struct {
	kind   Kind
	name   string
	body   string
	header int // Line number of the header
	line   int // Line number of the first body line
}

// scanBlocks splits a block library into its definitions.
//
//	% sub NAME
//	BODY...
//	% end
//
// The name may instead be given alone on the line following the header.
// Body lines are joined with newlines. Blank lines separate blocks; any
// other line outside a block is illegal.
func scanBlocks(ctx context.Context, r io.Reader) ([]block, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineLength)

	var (
		blocks   []block
		cur      *block
		body     []string
		n        int
		wantName bool
	)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, context.Cause(ctx)
		}

		n++
		text := sc.Text()

		switch {
		case cur == nil:
			if strings.TrimSpace(text) == "" {
				continue
			}

			kind, name, ok := parseHeader(text)
			if !ok {
				return nil, illegalLine(n, text)
			}

			cur = &block{kind: kind, name: name, header: n, line: n + 1}
			wantName = name == ""

		case wantName:
			name := strings.TrimSpace(text)
			if name == "" || isEnd(text) {
				return nil, ErrMissingName.Wrap(
					fmt.Errorf("%s opened at line %d", cur.kind, cur.header),
				).With(slog.Int("line", n))
			}

			cur.name = name
			cur.line = n + 1
			wantName = false

		case isEnd(text):
			cur.body = strings.Join(body, "\n")
			blocks = append(blocks, *cur)
			cur, body = nil, nil

		default:
			body = append(body, text)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, ErrReadLibrary.Wrap(err).With(slog.Int("line", n))
	}

	if cur != nil {
		what := fmt.Sprintf("reading %s header", cur.kind)
		if !wantName {
			what = fmt.Sprintf("reading %s %q opened at line %d",
				cur.kind, cur.name, cur.header)
		}

		return nil, ErrUnexpectedEOF.Wrap(fmt.Errorf("while %s", what)).
			With(slog.Int("line", n))
	}

	return blocks, nil
}

// parseHeader recognizes "% sub [NAME]" and "% temp [NAME]".
func parseHeader(text string) (Kind, string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(text), markerPrefix)
	if !ok {
		return 0, "", false
	}

	keyword, name, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if keyword != "sub" && keyword != "temp" {
		return 0, "", false
	}

	kind, _ := ParseKind(keyword)

	return kind, strings.TrimSpace(name), true
}

func isEnd(text string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(text), markerPrefix)

	return ok && strings.TrimSpace(rest) == markerEnd
}

func illegalLine(n int, text string) error {
	return ErrIllegalLine.Wrap(fmt.Errorf("line %d: %q", n, text)).
		With(slog.Int("line", n))
}
