// Package snapshot reads and writes content exports from the hosted backend.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sipsociety/sipcms/internal/model"
	"github.com/sipsociety/sipcms/internal/richtext"
)

// document is the wrapped export form; a bare JSON array is also accepted.
type document struct {
	Blocks []model.ExportBlock `json:"blocks"`
}

// Read loads an export from a file path or an http(s) URL.
func Read(path string) ([]model.ExportBlock, error) {
	r, err := openSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Decode(r)
}

func openSnapshot(path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		resp, err := http.Get(path)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: %s", path, resp.Status)
		}
		return resp.Body, nil
	}
	return os.Open(path)
}

// Decode parses an export. When the same (page, key, field) appears more
// than once the later row wins, keeping the position of the first.
func Decode(r io.Reader) ([]model.ExportBlock, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}

	var blocks []model.ExportBlock
	if data[0] == '{' {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		blocks = doc.Blocks
	} else if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return uniqueBlocks(blocks), nil
}

// Write emits blocks as an indented JSON array. With clean set, every
// block's HTML is sanitized first.
func Write(w io.Writer, blocks []model.ExportBlock, clean bool) error {
	out := make([]model.ExportBlock, 0, len(blocks))
	for _, b := range blocks {
		if clean {
			b.HTML = richtext.Sanitize(b.HTML)
		}
		out = append(out, b)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// FromBlocks converts stored blocks back to export rows using their raw HTML.
func FromBlocks(blocks []model.Block) []model.ExportBlock {
	out := make([]model.ExportBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, model.ExportBlock{
			Page:      b.Page,
			Key:       b.Key,
			Field:     b.Field,
			HTML:      b.RawHTML,
			UpdatedAt: b.UpdatedAt,
		})
	}
	return out
}

func uniqueBlocks(in []model.ExportBlock) []model.ExportBlock {
	index := make(map[string]int, len(in))
	out := make([]model.ExportBlock, 0, len(in))
	for _, b := range in {
		id := b.Page + "\x00" + b.Key + "\x00" + b.Field
		if i, ok := index[id]; ok {
			out[i] = b
			continue
		}
		index[id] = len(out)
		out = append(out, b)
	}
	return out
}
