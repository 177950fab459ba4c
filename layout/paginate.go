package layout

import (
	"fmt"
	"math"
)

// capacityEpsilon 吸收浮点误差，使“恰好放满 N 行”的 frame 不会被算成 N-1 行。
const capacityEpsilon = 1e-9

// FrameCounter 是 FrameSequence 的可选扩展：声明了有限个显式 frame，
// 超出部分重复最后一个。Walk 据此判断尾部 frame 是否永远放不下内容。
type FrameCounter interface {
	FrameCount() int
}

func (h Heights) FrameCount() int { return len(h) }

// Paginator 按需计算每个 frame 的行区间与表头标记。
// 调用方按任意顺序查询 frame，内部从 frame 0 顺序推进并缓存游标；
// 参数变化后需要 Reset（引擎在每次重新布局时直接新建）。
type Paginator struct {
	TotalRows    int
	Heights      FrameSequence
	RowHeight    float64
	HeaderHeight float64
	// EdgeHeight 是与行数无关的固定高度（网格顶边线宽）。
	EdgeHeight float64
	Mode       HeaderMode
	// Width 原样写入每个 FrameGeometry，所有 frame 的表格宽度一致。
	Width float64

	frames   []FrameGeometry
	warnings []error
}

// Reset 丢弃已缓存的 frame。
func (p *Paginator) Reset() {
	p.frames = nil
	p.warnings = nil
}

func (p *Paginator) heights() FrameSequence {
	if p.Heights == nil {
		return Heights(nil)
	}
	return p.Heights
}

// Frame 返回第 frameIndex 个 frame 的几何信息。
// 第二个返回值仅在该 frame 放不下任何内容行（而仍有未分配的行）时非空，
// 类型为 *InsufficientFrameHeightError；此时几何信息依然有效（空行区间）。
func (p *Paginator) Frame(frameIndex int) (FrameGeometry, error) {
	if frameIndex < 0 {
		return FrameGeometry{}, fmt.Errorf("layout: frame 序号不能为负：%d", frameIndex)
	}
	for len(p.frames) <= frameIndex {
		start := 0
		if n := len(p.frames); n > 0 {
			start = p.frames[n-1].RowEnd
		}
		g, warn := p.compute(len(p.frames), start)
		p.frames = append(p.frames, g)
		p.warnings = append(p.warnings, warn)
	}
	return p.frames[frameIndex], p.warnings[frameIndex]
}

// Capacity 返回第 frameIndex 个 frame 最多能容纳的内容行数（不考虑剩余行数）。
// auto frame 返回 -1。
func (p *Paginator) Capacity(frameIndex int) int {
	avail, auto := p.heights().AvailableHeight(frameIndex)
	if auto {
		return -1
	}
	return p.capacity(avail, p.Mode.HasHeader(frameIndex))
}

func (p *Paginator) capacity(available float64, hasHeader bool) int {
	usable := available - p.EdgeHeight
	if hasHeader {
		usable -= p.HeaderHeight
	}
	if usable <= 0 {
		return 0
	}
	if p.RowHeight <= 0 {
		return math.MaxInt32
	}
	return int(math.Floor(usable/p.RowHeight + capacityEpsilon))
}

func (p *Paginator) compute(frameIndex, start int) (FrameGeometry, error) {
	hasHeader := p.Mode.HasHeader(frameIndex)
	header := 0.0
	if hasHeader {
		header = p.HeaderHeight
	}
	remaining := p.TotalRows - start
	if remaining < 0 {
		remaining = 0
	}

	avail, auto := p.heights().AvailableHeight(frameIndex)
	g := FrameGeometry{
		Index:     frameIndex,
		Width:     p.Width,
		Auto:      auto,
		RowStart:  start,
		HasHeader: hasHeader,
	}
	rows := remaining
	if !auto {
		g.Available = avail
		if c := p.capacity(avail, hasHeader); c < rows {
			rows = c
		}
	}
	g.RowEnd = start + rows
	if auto {
		g.Height = p.EdgeHeight + header + float64(rows)*p.RowHeight
	} else {
		g.Height = avail
	}

	if rows == 0 && remaining > 0 {
		return g, &InsufficientFrameHeightError{
			Frame:     frameIndex,
			Available: avail,
			Required:  p.EdgeHeight + header + p.RowHeight,
		}
	}
	return g, nil
}

// Walk 从 frame 0 开始依次分页，直到所有行都被分配（至少产生一个 frame）。
// 放不下内容的 frame 会作为警告收集；若重复的尾部 frame 也放不下，或超过 maxFrames，
// 则返回已计算的 frame 与 ErrFrameLimit 包装的错误。
func (p *Paginator) Walk(maxFrames int) ([]FrameGeometry, []error, error) {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	tail := -1
	if fc, ok := p.heights().(FrameCounter); ok {
		tail = fc.FrameCount() - 1
		if tail < 1 && p.Mode == FirstFrame {
			// frame 0 与后续 frame 的表头不同，尾部从 frame 1 开始重复
			tail = 1
		}
	}

	var (
		frames   []FrameGeometry
		warnings []error
	)
	for f := 0; ; f++ {
		if f >= maxFrames {
			return frames, warnings, fmt.Errorf("%w: 已分页 %d 个 frame", ErrFrameLimit, maxFrames)
		}
		g, warn := p.Frame(f)
		frames = append(frames, g)
		if warn != nil {
			warnings = append(warnings, warn)
			if tail >= 0 && f >= tail {
				return frames, warnings, fmt.Errorf("%w: %v", ErrFrameLimit, warn)
			}
		}
		if g.RowEnd >= p.TotalRows {
			return frames, warnings, nil
		}
	}
}
