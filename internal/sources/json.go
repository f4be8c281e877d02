package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"jobpipe/internal/table"
)

// JSONLoader reads an array of flat objects. Columns appear in the order keys
// are first seen; objects missing a key get null there.
type JSONLoader struct {
	Path string
}

func (l JSONLoader) Name() string { return filepath.Base(l.Path) }

func (l JSONLoader) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, columns, err := decodeObjects(f)
	if err != nil {
		return nil, malformed(l.Path, "decode json array", err)
	}

	t := table.New(columns...)
	for _, rec := range records {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = rec[c]
		}
		if err := t.Append(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// decodeObjects streams the array so key order survives.
func decodeObjects(r io.Reader) ([]map[string]any, []string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, nil, err
	}

	var (
		records []map[string]any
		columns []string
		known   = map[string]bool{}
	)
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, nil, fmt.Errorf("element %d: %w", len(records), err)
		}
		rec := map[string]any{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, nil, err
			}
			key, ok := tok.(string)
			if !ok {
				return nil, nil, fmt.Errorf("element %d: expected object key, got %v", len(records), tok)
			}
			var raw any
			if err := dec.Decode(&raw); err != nil {
				return nil, nil, fmt.Errorf("element %d key %q: %w", len(records), key, err)
			}
			rec[key] = jsonScalar(raw)
			if !known[key] {
				known[key] = true
				columns = append(columns, key)
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, nil, err
	}
	return records, columns, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// jsonScalar maps decoded values onto cell values. Nested arrays and objects
// are kept as their JSON text.
func jsonScalar(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case map[string]any, []any:
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return x
	}
}
