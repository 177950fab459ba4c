package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/framegrid/layout"
)

// Format 把文档写回 DSL 文本，Parse(Format(doc)) 得到等价的文档。
// 样式中的颜色总是写成 #RRGGBB，命名颜色只保留在 resources 中。
func Format(doc *Document) string {
	w := &writer{}
	w.line(0, "table %s %s {", ident(doc.Name, "Table"), ident(doc.Version, "v1"))

	w.line(1, "meta {")
	w.assign(2, "title", quote(doc.Meta.Title))
	w.assign(2, "author", quote(doc.Meta.Author))
	w.assign(2, "subject", quote(doc.Meta.Subject))
	w.assign(2, "creator", quote(doc.Meta.Creator))
	if len(doc.Meta.Keywords) > 0 {
		items := make([]string, len(doc.Meta.Keywords))
		for i, k := range doc.Meta.Keywords {
			items[i] = strconv.Quote(k)
		}
		w.assign(2, "keywords", "["+strings.Join(items, ", ")+"]")
	}
	w.line(1, "}")

	if len(doc.Resources.Fonts) > 0 || len(doc.Resources.Colors) > 0 {
		w.line(1, "resources {")
		for _, f := range doc.Resources.Fonts {
			w.line(2, "font %s {", f.Name)
			w.assign(3, "src", quote(f.Src))
			w.assign(3, "style", quote(f.Style))
			w.assign(3, "family", quote(f.Family))
			w.assign(3, "fallback", quote(f.Fallback))
			w.line(2, "}")
		}
		names := make([]string, 0, len(doc.Resources.Colors))
		for name := range doc.Resources.Colors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			w.line(2, "color %s = %s", name, hexColor(doc.Resources.Colors[name]))
		}
		w.line(1, "}")
	}

	s := doc.Style
	w.line(1, "style {")
	w.assign(2, "cell-margin", layout.FormatMM(s.CellMargin))
	w.assign(2, "header-font", fontRef(doc.Resources, s.HeaderFont.Resource))
	w.assign(2, "header-size", layout.FormatMM(s.HeaderFont.Size))
	w.assign(2, "header-color", hexColor(s.HeaderColor))
	w.assign(2, "header-align", s.HeaderAlign.String())
	w.assign(2, "header-mode", s.HeaderMode.String())
	w.assign(2, "content-font", fontRef(doc.Resources, s.ContentFont.Resource))
	w.assign(2, "content-size", layout.FormatMM(s.ContentFont.Size))
	w.assign(2, "content-color", hexColor(s.ContentColor))
	w.assign(2, "show-grid", strconv.FormatBool(s.ShowGrid))
	w.assign(2, "grid-width", layout.FormatMM(s.GridStrokeWidth))
	w.assign(2, "grid-color", hexColor(s.GridColor))
	w.line(1, "}")

	w.line(1, "columns {")
	for _, col := range doc.Columns {
		w.line(2, "column %s {", strconv.Quote(col.Source))
		w.assign(3, "heading", strconv.Quote(col.Heading))
		w.assign(3, "align", col.Align.String())
		if col.Width > 0 {
			w.assign(3, "width", layout.FormatMM(col.Width))
		}
		w.line(2, "}")
	}
	w.line(1, "}")

	w.line(1, "frames {")
	if doc.Frames.Page != "" {
		w.assign(2, "page", doc.Frames.Page)
	}
	if doc.Frames.Landscape {
		w.assign(2, "orientation", "landscape")
	}
	if doc.Frames.Margin > 0 {
		w.assign(2, "margin", layout.FormatMM(doc.Frames.Margin))
	}
	for _, h := range doc.Frames.Heights {
		if h < 0 {
			w.line(2, "frame auto")
			continue
		}
		w.line(2, "frame %s", layout.FormatMM(h))
	}
	w.line(1, "}")

	if doc.Data.File != "" || doc.Data.Rows != "" {
		w.line(1, "data {")
		w.assign(2, "file", quote(doc.Data.File))
		w.assign(2, "rows", quote(doc.Data.Rows))
		w.line(1, "}")
	}
	w.line(0, "}")
	return w.b.String()
}

type writer struct {
	b strings.Builder
}

func (w *writer) line(depth int, format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

// assign 跳过空值，空字符串与未设置等价。
func (w *writer) assign(depth int, key, value string) {
	if value == "" {
		return
	}
	w.line(depth, "%s: %s", key, value)
}

func quote(s string) string {
	if s == "" {
		return ""
	}
	return strconv.Quote(s)
}

func ident(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func fontRef(res Resources, f layout.FontResource) string {
	if declared, ok := res.Font(f.Name); ok && declared == f {
		return f.Name
	}
	if f == DefaultFont {
		return DefaultFont.Name
	}
	return strconv.Quote(f.Src)
}

func hexColor(c layout.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R&0xFF, c.G&0xFF, c.B&0xFF)
}
