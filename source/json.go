// Package source provides layout.DataSource implementations backed by JSON data.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ByLCY/framegrid/binding"
	"github.com/ByLCY/framegrid/layout"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// JSON reads rows from already-decoded JSON. Rows is a binding path to the
// array of records ("" means Data itself is the array); each column's Source
// key is resolved against every record.
type JSON struct {
	Data any
	Rows string
}

var _ layout.DataSource = JSON{}

func (s JSON) FetchContents(columns layout.Columns) (layout.Contents, error) {
	raw, ok := binding.Resolve(s.Data, s.Rows)
	if !ok {
		return nil, fmt.Errorf("数据中不存在路径 %q", s.Rows)
	}
	records, ok := raw.([]interface{})
	if !ok {
		if raw == nil {
			return layout.Contents{}, nil
		}
		return nil, fmt.Errorf("路径 %q 不是数组（%T）", s.Rows, raw)
	}
	contents := make(layout.Contents, 0, len(records))
	for _, rec := range records {
		row := make(layout.Row, len(columns))
		for i, col := range columns {
			if v, ok := binding.Resolve(rec, col.Source); ok && col.Source != "" {
				row[i] = Value(v)
			}
		}
		contents = append(contents, row)
	}
	return contents, nil
}

// File re-reads a JSON file on every fetch so that Engine.Refresh picks up
// changes made on disk.
type File struct {
	Path string
	Rows string
}

var _ layout.DataSource = File{}

func (f File) FetchContents(columns layout.Columns) (layout.Contents, error) {
	data, err := LoadFile(f.Path)
	if err != nil {
		return nil, err
	}
	return JSON{Data: data, Rows: f.Rows}.FetchContents(columns)
}

// LoadFile decodes a JSON file, keeping numbers as float64.
func LoadFile(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件 %s 失败: %w", path, err)
	}
	return Decode(raw)
}

// Decode parses JSON bytes into the generic form understood by binding.
func Decode(raw []byte) (any, error) {
	var out any
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&out); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}
	return out, nil
}

// Value converts a decoded JSON value into a typed cell value. Strings that
// look like ISO dates become dates; objects and arrays are shown as JSON.
func Value(v any) layout.CellValue {
	switch val := v.(type) {
	case nil:
		return layout.Null()
	case bool:
		return layout.Bool(val)
	case float64:
		return layout.Number(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return layout.Number(f)
		}
		return layout.Text(val.String())
	case string:
		if looksLikeDate(val) {
			for _, l := range dateLayouts {
				if t, err := time.Parse(l, val); err == nil {
					return layout.Date(t)
				}
			}
		}
		return layout.Text(val)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return layout.Text(binding.Format(val))
		}
		return layout.Text(string(b))
	default:
		return layout.Text(binding.Format(val))
	}
}

func looksLikeDate(s string) bool {
	return len(s) >= 10 && s[4] == '-' && s[7] == '-' && !strings.ContainsAny(s[:4], "-+ ")
}
