package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func gridFixture() Grid {
	return Grid{
		Widths:       ColumnWidths{10, 20},
		RowHeight:    5,
		HeaderHeight: 7,
		Margin:       1,
		Stroke:       0.5,
		ShowGrid:     true,
	}
}

func TestGridWidthAndHeight(t *testing.T) {
	g := gridFixture()
	if !near(g.Width(), 30+3*0.5) {
		t.Fatalf("width = %g", g.Width())
	}
	if !near(g.Height(3, true), 0.5+7+15) {
		t.Fatalf("height with header = %g", g.Height(3, true))
	}
	if !near(g.Height(0, false), 0.5) {
		t.Fatalf("empty height = %g", g.Height(0, false))
	}
}

func TestGridLineOffsets(t *testing.T) {
	g := gridFixture()
	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff([]float64{0.25, 7.25, 12.25, 17.25}, g.HorizontalLines(2, true), approx); diff != "" {
		t.Fatalf("horizontal lines (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.25, 10.75, 31.25}, g.VerticalLines(), approx); diff != "" {
		t.Fatalf("vertical lines (-want +got):\n%s", diff)
	}
	// 最后一条横线的外沿等于表格高度
	hs := g.HorizontalLines(2, true)
	if !near(hs[len(hs)-1]+g.Stroke/2, g.Height(2, true)) {
		t.Fatalf("bottom line does not close the table")
	}
}

func TestGridSegmentsHiddenGrid(t *testing.T) {
	g := gridFixture()
	g.ShowGrid = false
	if segs := g.Segments(FrameGeometry{RowStart: 0, RowEnd: 3, HasHeader: true}); segs != nil {
		t.Fatalf("expected no segments, got %d", len(segs))
	}
}

func TestGridSegmentsCount(t *testing.T) {
	g := gridFixture()
	segs := g.Segments(FrameGeometry{RowStart: 4, RowEnd: 6, HasHeader: true})
	// 4 条横线 + 3 条竖线
	if len(segs) != 7 {
		t.Fatalf("expected 7 segments, got %d", len(segs))
	}
	last := segs[len(segs)-1]
	if !near(last.X1, 31.25) || !near(last.Y1, 0.25) || !near(last.Y2, 17.25) {
		t.Fatalf("unexpected right border %+v", last)
	}
}

// TestGridSegmentsDegenerate：没有行也没有表头时只画一条横线。
func TestGridSegmentsDegenerate(t *testing.T) {
	g := gridFixture()
	segs := g.Segments(FrameGeometry{})
	if len(segs) != 1 {
		t.Fatalf("expected a single horizontal line, got %+v", segs)
	}
	if segs[0].Y1 != segs[0].Y2 || !near(segs[0].X2, g.Width()) {
		t.Fatalf("unexpected segment %+v", segs[0])
	}
}

func TestGridCellsPlacementAndAlignment(t *testing.T) {
	g := gridFixture()
	columns := Columns{{Heading: "A", Align: AlignRight}, {Heading: "B", Align: AlignCenter}}
	contents := Contents{
		{Text("a0"), Number(1)},
		{Text("a1"), Number(2)},
		{Text("a2"), Number(3)},
	}
	frame := FrameGeometry{RowStart: 1, RowEnd: 3, HasHeader: true}
	cells := g.Cells(frame, []string{"A", "B"}, contents, columns, HeaderLeft)
	if len(cells) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(cells))
	}

	head := cells[0]
	if !head.IsHeader || head.Row != -1 || head.Align != AlignLeft {
		t.Fatalf("unexpected header cell %+v", head)
	}
	if !near(head.X, 1.5) || !near(head.Y, 1.5) || !near(head.Width, 8) || !near(head.Height, 4.5) {
		t.Fatalf("unexpected header box %+v", head)
	}

	second := cells[3]
	if second.Row != 1 || second.Column != 1 || second.Text != "2" || second.Align != AlignCenter {
		t.Fatalf("unexpected cell %+v", second)
	}
	if !near(second.X, 0.5+10+0.5+1) || !near(second.Y, 0.5+7+1) || !near(second.Height, 2.5) {
		t.Fatalf("unexpected cell box %+v", second)
	}
	if cells[4].Row != 2 || !near(cells[4].Y, 0.5+7+5+1) {
		t.Fatalf("rows are not stacked: %+v", cells[4])
	}
}

func TestGridCellsHeaderFollowsColumn(t *testing.T) {
	g := gridFixture()
	columns := Columns{{Align: AlignRight}, {Align: AlignCenter}}
	cells := g.Cells(FrameGeometry{HasHeader: true}, []string{"x", "y"}, nil, columns, HeaderFollowColumn)
	if len(cells) != 2 || cells[0].Align != AlignRight || cells[1].Align != AlignCenter {
		t.Fatalf("header alignment should follow columns: %+v", cells)
	}
}
