package layout

import (
	"errors"
	"strings"
	"testing"
)

// TestComputeMaxWidthsTakesWidestCell 验证列宽 = 2*margin + max(表头, 单元格)。
func TestComputeMaxWidthsTakesWidestCell(t *testing.T) {
	cols := Columns{{Heading: "Name"}, {Heading: "Q"}}
	contents := Contents{
		{Text("ab"), Number(12345)},
		{Text("abcdefg"), Number(1)},
	}
	m := &stubMeasurer{}
	widths, err := ComputeMaxWidths(cols, cols.Headings(), contents, true, Font{}, Font{}, 1.5, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 列 0：max("Name"=8, "abcdefg"=14) + 3；列 1：max("Q"=2, "12345"=10) + 3
	if !near(widths[0], 17) || !near(widths[1], 13) {
		t.Fatalf("unexpected widths: %v", widths)
	}
}

func TestComputeMaxWidthsHeaderIgnoredWhenHidden(t *testing.T) {
	cols := Columns{{Heading: "A very long heading"}}
	contents := Contents{{Text("x")}}
	widths, err := ComputeMaxWidths(cols, cols.Headings(), contents, false, Font{}, Font{}, 0, &stubMeasurer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(widths[0], 2) {
		t.Fatalf("header should not contribute when hidden everywhere, got %v", widths)
	}
}

// TestComputeMaxWidthsHintOverrides 显式宽度 50 覆盖测量结果 80，且不做测量。
func TestComputeMaxWidthsHintOverrides(t *testing.T) {
	cols := Columns{{Heading: "H", Width: 50}}
	contents := Contents{{Text(strings.Repeat("x", 40))}}
	m := &stubMeasurer{}
	widths, err := ComputeMaxWidths(cols, cols.Headings(), contents, true, Font{}, Font{}, 1, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if widths[0] != 50 {
		t.Fatalf("hint should override measured width, got %g", widths[0])
	}
	if m.calls != 0 {
		t.Fatalf("hinted column must not be measured, got %d calls", m.calls)
	}
}

func TestComputeMaxWidthsHintClampedToMargins(t *testing.T) {
	cols := Columns{{Width: 1}}
	widths, err := ComputeMaxWidths(cols, nil, nil, true, Font{}, Font{}, 2, &stubMeasurer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if widths[0] != 4 {
		t.Fatalf("width must be at least 2*margin, got %g", widths[0])
	}
}

func TestComputeMaxWidthsZeroRowsUsesHeaders(t *testing.T) {
	cols := Columns{{Heading: "abc"}, {Heading: ""}}
	widths, err := ComputeMaxWidths(cols, cols.Headings(), nil, true, Font{}, Font{}, 1, &stubMeasurer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(widths) != 2 || !near(widths[0], 8) || !near(widths[1], 2) {
		t.Fatalf("unexpected widths: %v", widths)
	}
}

func TestComputeMaxWidthsEmptyColumns(t *testing.T) {
	_, err := ComputeMaxWidths(nil, nil, Contents{{Text("x")}}, true, Font{}, Font{}, 1, &stubMeasurer{})
	var ec *EmptyColumnSetError
	if !errors.As(err, &ec) || !errors.Is(err, ErrEmptyColumns) {
		t.Fatalf("expected EmptyColumnSetError, got %v", err)
	}
}

func TestComputeMaxWidthsMeasureError(t *testing.T) {
	cols := Columns{{Heading: "H"}}
	_, err := ComputeMaxWidths(cols, cols.Headings(), Contents{{Text("boom")}}, true, Font{}, Font{}, 1, &stubMeasurer{fail: "boom"})
	if err == nil || !strings.Contains(err.Error(), "第 0 行第 0 列") {
		t.Fatalf("expected measurement error with location, got %v", err)
	}
}

// TestColumnWidthsLowerBound 对任意非空内容：Σ列宽 ≥ 列数 * 2*margin。
func TestColumnWidthsLowerBound(t *testing.T) {
	for _, margin := range []float64{0, 0.5, 3} {
		for _, n := range []int{1, 4, 9} {
			cols := make(Columns, n)
			contents := textRows(3, n)
			widths, err := ComputeMaxWidths(cols, cols.Headings(), contents, true, Font{}, Font{}, margin, &stubMeasurer{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(widths) != n {
				t.Fatalf("expected %d widths, got %d", n, len(widths))
			}
			if widths.Total() < float64(n)*2*margin {
				t.Fatalf("sum %g below bound %g", widths.Total(), float64(n)*2*margin)
			}
			for i, w := range widths {
				if w < 2*margin {
					t.Fatalf("column %d width %g below 2*margin", i, w)
				}
			}
		}
	}
}
