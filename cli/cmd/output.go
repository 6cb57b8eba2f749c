package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/ardnew/phrasegen/log"
)

// Output formats shared by commands that print structured results.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// defaultIndent is the indent width of structured command output.
const defaultIndent = 2

// marshal encodes v as indented JSON or YAML.
func marshal(ctx context.Context, format string, v any) ([]byte, error) {
	switch format {
	case formatYAML:
		data, err := yaml.MarshalContext(ctx, v, yaml.Indent(defaultIndent))
		if err != nil {
			return nil, ErrYAMLMarshal.Wrap(err)
		}

		return data, nil

	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, ErrJSONMarshal.Wrap(err)
		}

		return append(data, '\n'), nil
	}
}

// emit writes data to the file at path, replacing it atomically, or to the
// output stream of ctx when path is empty.
func emit(ctx context.Context, path string, data []byte) error {
	if path == "" {
		_, out := streamsFrom(ctx)

		if _, err := out.Write(data); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	log.DebugContext(ctx, "wrote output",
		slog.String("path", path),
		slog.Int("bytes", len(data)))

	return nil
}
