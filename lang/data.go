package lang

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// DataFormat identifies the encoding of a context data file.
type DataFormat int

const (
	DataYAML DataFormat = iota
	DataTOML
	DataJSON
)

// DataFormatOf infers the encoding of path from its extension.
// Unknown extensions are treated as YAML, which also accepts JSON.
func DataFormatOf(path string) DataFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return DataTOML
	case ".json":
		return DataJSON
	default:
		return DataYAML
	}
}

// LoadScope reads a data file whose top level is a mapping and converts it
// into a [Scope].
func LoadScope(ctx context.Context, path string) (Scope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("path", path))
	}

	return DecodeScope(ctx, data, DataFormatOf(path))
}

// DecodeScope decodes a mapping in the given format into a [Scope].
func DecodeScope(ctx context.Context, data []byte, format DataFormat) (Scope, error) {
	var (
		raw map[string]any
		err error
	)

	switch format {
	case DataTOML:
		_, err = toml.Decode(string(data), &raw)
	case DataJSON:
		err = json.Unmarshal(data, &raw)
	default:
		err = yaml.UnmarshalContext(ctx, data, &raw)
	}

	if err != nil {
		return nil, ErrData.Wrap(err)
	}

	scope := make(Scope, len(raw))

	for k, x := range raw {
		v, err := FromNative(x)
		if err != nil {
			return nil, ErrData.Wrap(err).With(slog.String("key", k))
		}

		scope[k] = v
	}

	return scope, nil
}
