package layout

import (
	"io"
	"math"

	"github.com/sirupsen/logrus"
)

// Measurer 提供文本度量：字符串宽度与字体行高（单位 mm）。
// 引擎在一次 Refresh 中可能对每个单元格调用一次，实现方可以自行缓存。
type Measurer interface {
	TextWidth(text string, font Font) (float64, error)
	LineHeight(font Font) (float64, error)
}

// DataSource 负责按当前列定义拉取表格内容，每行的单元格须与列一一对应。
type DataSource interface {
	FetchContents(columns Columns) (Contents, error)
}

// DataSourceFunc 让普通函数满足 DataSource。
type DataSourceFunc func(columns Columns) (Contents, error)

func (f DataSourceFunc) FetchContents(columns Columns) (Contents, error) { return f(columns) }

// StaticContents 是固定内容的数据源，忽略列定义。
type StaticContents Contents

func (s StaticContents) FetchContents(Columns) (Contents, error) { return Contents(s).Clone(), nil }

// FrameSequence 按 frame 序号给出可用高度；auto 为 true 时 frame 高度随内容增长。
type FrameSequence interface {
	AvailableHeight(frameIndex int) (height float64, auto bool)
}

// Heights 是固定的 frame 高度序列，超出末尾的序号沿用最后一个高度；
// 空序列表示单个随内容增长的 frame。负数同样表示 auto。
type Heights []float64

// AutoHeight 在 Heights 中表示随内容增长的 frame。
const AutoHeight = -1.0

func (h Heights) AvailableHeight(frameIndex int) (float64, bool) {
	if len(h) == 0 {
		return math.Inf(1), true
	}
	if frameIndex >= len(h) {
		frameIndex = len(h) - 1
	}
	if frameIndex < 0 {
		frameIndex = 0
	}
	v := h[frameIndex]
	if v < 0 {
		return math.Inf(1), true
	}
	return v, false
}

// DefaultMaxFrames 是 Engine.Frames 的默认 frame 数上限。
const DefaultMaxFrames = 10000

// Options 配置引擎的依赖与初始快照。
type Options struct {
	Columns Columns
	Style   Style
	Frames  FrameSequence
	// Meta 用于表头文本中的 ${...} 插值，同时写入 Result.Meta。
	Meta DocumentMeta
	// Data 是表头插值可访问的额外数据（通常是 JSON 解码结果）。
	Data any
	// Logger 为空时丢弃日志。
	Logger    logrus.FieldLogger
	MaxFrames int
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
