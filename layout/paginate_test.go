package layout

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestPaginatorScenarioFirstFrame：23 行，frame 0 恰好容纳表头 + 10 行，之后每个 frame 恰好 10 行。
func TestPaginatorScenarioFirstFrame(t *testing.T) {
	p := &Paginator{
		TotalRows:    23,
		Heights:      Heights{57, 50},
		RowHeight:    5,
		HeaderHeight: 7,
		Mode:         FirstFrame,
	}
	type frame struct {
		Start, End int
		Header     bool
	}
	var got []frame
	for f := 0; f < 3; f++ {
		g, warn := p.Frame(f)
		if warn != nil {
			t.Fatalf("frame %d: unexpected warning %v", f, warn)
		}
		got = append(got, frame{g.RowStart, g.RowEnd, g.HasHeader})
	}
	want := []frame{{0, 10, true}, {10, 20, false}, {20, 23, false}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("row ranges mismatch (-want +got):\n%s", diff)
	}

	// 全部行分配完之后的 frame 为空，但仍按规则计算表头
	g, _ := p.Frame(3)
	if !g.Empty() || g.RowStart != 23 || g.HasHeader {
		t.Fatalf("unexpected trailing frame: %+v", g)
	}
}

func TestPaginatorHeaderModes(t *testing.T) {
	cases := []struct {
		mode HeaderMode
		want func(f int) bool
	}{
		{FirstFrame, func(f int) bool { return f == 0 }},
		{AllFrames, func(int) bool { return true }},
		{NoHeaders, func(int) bool { return false }},
	}
	for _, tc := range cases {
		p := &Paginator{TotalRows: 40, Heights: Heights{30}, RowHeight: 5, HeaderHeight: 6, Mode: tc.mode}
		for f := 0; f < 12; f++ {
			g, _ := p.Frame(f)
			if g.HasHeader != tc.want(f) {
				t.Fatalf("%s: frame %d hasHeader=%v", tc.mode, f, g.HasHeader)
			}
		}
	}
}

// TestPaginatorPartitionProperty：任意 frame 高度序列下，行区间是 [0,total) 的无缝划分。
func TestPaginatorPartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		total := rng.Intn(120)
		heights := make(Heights, 1+rng.Intn(6))
		for i := range heights {
			heights[i] = 4 + rng.Float64()*60
		}
		// 保证尾部 frame 至少能放下一行，避免无限分页
		heights[len(heights)-1] = 30
		mode := HeaderMode(rng.Intn(3))
		p := &Paginator{TotalRows: total, Heights: heights, RowHeight: 4.5, HeaderHeight: 6, EdgeHeight: 0.3, Mode: mode}

		frames, _, err := p.Walk(0)
		if err != nil {
			t.Fatalf("iter %d: walk failed: %v", iter, err)
		}
		next := 0
		sum := 0
		for _, g := range frames {
			if g.RowStart != next {
				t.Fatalf("iter %d: gap or overlap at frame %d: start %d want %d", iter, g.Index, g.RowStart, next)
			}
			if g.RowEnd < g.RowStart {
				t.Fatalf("iter %d: negative range %+v", iter, g)
			}
			next = g.RowEnd
			sum += g.Rows()
		}
		if next != total || sum != total {
			t.Fatalf("iter %d: covered %d rows (sum %d), want %d", iter, next, sum, total)
		}
	}
}

// TestPaginatorZeroRowsAllFrames：没有内容行时仍产生一个 frame，高度只有表头。
func TestPaginatorZeroRowsAllFrames(t *testing.T) {
	p := &Paginator{TotalRows: 0, RowHeight: 5, HeaderHeight: 7, Mode: AllFrames}
	frames, warnings, err := p.Walk(0)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("unexpected err=%v warnings=%v", err, warnings)
	}
	if len(frames) != 1 {
		t.Fatalf("expected exactly one frame, got %d", len(frames))
	}
	g := frames[0]
	if !g.Empty() || !g.HasHeader || !near(g.Height, 7) {
		t.Fatalf("unexpected frame %+v", g)
	}
}

func TestPaginatorZeroRowsNoHeadersHasZeroHeight(t *testing.T) {
	p := &Paginator{TotalRows: 0, RowHeight: 5, HeaderHeight: 7, Mode: NoHeaders}
	g, err := p.Frame(0)
	if err != nil {
		t.Fatalf("unexpected warning: %v", err)
	}
	if g.Height != 0 || g.HasHeader {
		t.Fatalf("unexpected frame %+v", g)
	}
}

// TestPaginatorAutoFrameFitsContent：auto frame 的高度正好是表头 + 实际放置的行。
func TestPaginatorAutoFrameFitsContent(t *testing.T) {
	p := &Paginator{TotalRows: 13, Heights: Heights{57, AutoHeight}, RowHeight: 5, HeaderHeight: 7, EdgeHeight: 0.5, Mode: AllFrames}
	frames, _, err := p.Walk(0)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	// frame 0：(57-0.5-7)/5 = 9.9 → 9 行
	if frames[0].Rows() != 9 || frames[0].Height != 57 {
		t.Fatalf("unexpected first frame %+v", frames[0])
	}
	last := frames[1]
	if !last.Auto || last.Rows() != 4 || !near(last.Height, 0.5+7+4*5) {
		t.Fatalf("unexpected auto frame %+v", last)
	}
}

// TestPaginatorInsufficientHeight：frame 放不下任何一行时报告警告而不是失败。
func TestPaginatorInsufficientHeight(t *testing.T) {
	p := &Paginator{TotalRows: 5, Heights: Heights{8, 40}, RowHeight: 5, HeaderHeight: 7, Mode: AllFrames}
	g, warn := p.Frame(0)
	var ih *InsufficientFrameHeightError
	if !errors.As(warn, &ih) || !IsWarning(warn) {
		t.Fatalf("expected insufficient height warning, got %v", warn)
	}
	if ih.Frame != 0 || ih.Available != 8 || !near(ih.Required, 12) {
		t.Fatalf("unexpected warning details %+v", ih)
	}
	if !g.Empty() || g.RowStart != 0 {
		t.Fatalf("frame should be empty, got %+v", g)
	}
	// 下一个 frame 从同一行继续
	g1, warn := p.Frame(1)
	if warn != nil || g1.RowStart != 0 || g1.RowEnd != 5 {
		t.Fatalf("unexpected second frame %+v warn=%v", g1, warn)
	}
}

// TestPaginatorWalkStopsOnTooTallRow：单行比任何 frame 都高时不会无限分页。
func TestPaginatorWalkStopsOnTooTallRow(t *testing.T) {
	p := &Paginator{TotalRows: 3, Heights: Heights{20, 10}, RowHeight: 25, HeaderHeight: 5, Mode: FirstFrame}
	frames, warnings, err := p.Walk(0)
	if !errors.Is(err, ErrFrameLimit) {
		t.Fatalf("expected ErrFrameLimit, got %v", err)
	}
	if len(frames) != 2 || len(warnings) != 2 {
		t.Fatalf("expected 2 frames and 2 warnings, got %d/%d", len(frames), len(warnings))
	}
}

func TestPaginatorWalkMaxFrames(t *testing.T) {
	p := &Paginator{TotalRows: 100, Heights: Heights{10}, RowHeight: 5, Mode: NoHeaders}
	frames, _, err := p.Walk(3)
	if !errors.Is(err, ErrFrameLimit) || len(frames) != 3 {
		t.Fatalf("expected limit after 3 frames, got %d frames err=%v", len(frames), err)
	}
}

func TestPaginatorNegativeIndex(t *testing.T) {
	p := &Paginator{TotalRows: 1}
	if _, err := p.Frame(-1); err == nil {
		t.Fatalf("expected error for negative frame index")
	}
}

func TestPaginatorCapacity(t *testing.T) {
	p := &Paginator{Heights: Heights{57, AutoHeight}, RowHeight: 5, HeaderHeight: 7, Mode: FirstFrame}
	if c := p.Capacity(0); c != 10 {
		t.Fatalf("frame 0 capacity = %d, want 10", c)
	}
	if c := p.Capacity(1); c != -1 {
		t.Fatalf("auto frame capacity = %d, want -1", c)
	}
}
