package layout

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// stubMeasurer 是测试用的最小度量实现：每个字符宽 charWidth（默认 2mm），
// 行高等于字号；可通过 widths 指定个别字符串的宽度。
type stubMeasurer struct {
	charWidth float64
	widths    map[string]float64
	calls     int
	fail      string
}

func (s *stubMeasurer) TextWidth(text string, font Font) (float64, error) {
	s.calls++
	if s.fail != "" && text == s.fail {
		return 0, fmt.Errorf("cannot measure %q", text)
	}
	if w, ok := s.widths[text]; ok {
		return w, nil
	}
	cw := s.charWidth
	if cw == 0 {
		cw = 2
	}
	return float64(utf8.RuneCountInString(text)) * cw, nil
}

func (s *stubMeasurer) LineHeight(font Font) (float64, error) {
	if font.Size <= 0 {
		return 4, nil
	}
	return font.Size, nil
}

// plainStyle 返回无网格、零边距的样式：行高 5mm，表头高 7mm。
func plainStyle(mode HeaderMode) Style {
	return Style{
		HeaderFont:  Font{Size: 7},
		ContentFont: Font{Size: 5},
		HeaderMode:  mode,
	}
}

func textRows(n, cols int) Contents {
	out := make(Contents, n)
	for r := range out {
		row := make(Row, cols)
		for c := range row {
			row[c] = Text(fmt.Sprintf("r%dc%d", r, c))
		}
		out[r] = row
	}
	return out
}

func fiveColumns() Columns {
	cols := make(Columns, 5)
	for i := range cols {
		cols[i] = ColumnSpec{Heading: fmt.Sprintf("H%d", i), Source: fmt.Sprintf("f%d", i)}
	}
	return cols
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
