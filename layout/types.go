package layout

import (
	"fmt"
	"strings"
)

// 该文件定义表格配置、样式快照与布局结果，供引擎、渲染与调试 JSON 共用。
// 所有长度单位均为毫米（mm）。

// Alignment 是列内容的水平对齐方式。
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// MarshalText 输出 left/center/right。
func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText 接受 left/center/right 及 start/end 别名。
func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := ParseAlignment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAlignment 解析对齐方式，start/end 分别映射为 left/right。
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	default:
		return AlignLeft, fmt.Errorf("无法识别的对齐方式：%s", s)
	}
}

// HeaderAlignment 控制表头文本的水平对齐。
type HeaderAlignment int

const (
	HeaderFollowColumn HeaderAlignment = iota // 与所在列一致
	HeaderLeft
	HeaderCenter
	HeaderRight
)

func (h HeaderAlignment) String() string {
	switch h {
	case HeaderLeft:
		return "left"
	case HeaderCenter:
		return "center"
	case HeaderRight:
		return "right"
	default:
		return "follow-column"
	}
}

func (h HeaderAlignment) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *HeaderAlignment) UnmarshalText(b []byte) error {
	v, err := ParseHeaderAlignment(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func ParseHeaderAlignment(s string) (HeaderAlignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "follow-column", "follow", "column":
		return HeaderFollowColumn, nil
	case "left", "start":
		return HeaderLeft, nil
	case "center", "middle":
		return HeaderCenter, nil
	case "right", "end":
		return HeaderRight, nil
	default:
		return HeaderFollowColumn, fmt.Errorf("无法识别的表头对齐方式：%s", s)
	}
}

// Resolve 返回表头在给定列中的实际对齐。
func (h HeaderAlignment) Resolve(column Alignment) Alignment {
	switch h {
	case HeaderLeft:
		return AlignLeft
	case HeaderCenter:
		return AlignCenter
	case HeaderRight:
		return AlignRight
	default:
		return column
	}
}

// HeaderMode 控制表头出现在哪些 frame 中。
type HeaderMode int

const (
	FirstFrame HeaderMode = iota // 仅第一个 frame
	AllFrames                    // 每个 frame
	NoHeaders                    // 不显示表头
)

func (m HeaderMode) String() string {
	switch m {
	case AllFrames:
		return "all-frames"
	case NoHeaders:
		return "no-headers"
	default:
		return "first-frame"
	}
}

func (m HeaderMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *HeaderMode) UnmarshalText(b []byte) error {
	v, err := ParseHeaderMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-frame", "first":
		return FirstFrame, nil
	case "all-frames", "all":
		return AllFrames, nil
	case "no-headers", "none":
		return NoHeaders, nil
	default:
		return FirstFrame, fmt.Errorf("无法识别的表头模式：%s", s)
	}
}

// HasHeader 按表头模式判断第 frameIndex 个 frame 是否绘制表头。
func (m HeaderMode) HasHeader(frameIndex int) bool {
	switch m {
	case AllFrames:
		return true
	case NoHeaders:
		return false
	default:
		return frameIndex == 0
	}
}

// VisibleAnywhere 表示表头是否会出现在至少一个 frame 上。
func (m HeaderMode) VisibleAnywhere() bool { return m != NoHeaders }

// ColumnSpec 描述一列：表头文本、对齐、宽度提示与数据源键。
type ColumnSpec struct {
	Heading string    `json:"heading" yaml:"heading"`
	Align   Alignment `json:"align" yaml:"align"`
	// Width 为显式列宽（mm），0 表示按内容自动计算。
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Source string  `json:"source" yaml:"source"`
}

// Columns 是有序的列定义，顺序决定每行与表头的列顺序。
type Columns []ColumnSpec

// Headings 返回各列表头文本。
func (c Columns) Headings() []string {
	out := make([]string, len(c))
	for i, col := range c {
		out[i] = col.Heading
	}
	return out
}

// FontResource 描述字体资源，src 可以是文件路径、embed:<name> 或 built-in:<name>。
type FontResource struct {
	Name     string `json:"name" yaml:"name"`
	Src      string `json:"src" yaml:"src"`
	Style    string `json:"style,omitempty" yaml:"style,omitempty"`
	Family   string `json:"family,omitempty" yaml:"family,omitempty"`
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Font 是字体资源加字号（mm）。
type Font struct {
	Resource FontResource `json:"resource" yaml:"resource"`
	Size     float64      `json:"size" yaml:"size"`
}

// Key 用于测量缓存。
func (f Font) Key() string {
	return fmt.Sprintf("%s|%s|%s|%g", f.Resource.Name, f.Resource.Src, f.Resource.Style, f.Size)
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r" yaml:"r"`
	G int `json:"g" yaml:"g"`
	B int `json:"b" yaml:"b"`
}

// Style 是表格级样式快照。按值传递，引擎内部不会被外部修改。
type Style struct {
	CellMargin      float64         `json:"cellMargin" yaml:"cellMargin"`
	HeaderFont      Font            `json:"headerFont" yaml:"headerFont"`
	HeaderColor     Color           `json:"headerColor" yaml:"headerColor"`
	HeaderAlign     HeaderAlignment `json:"headerAlign" yaml:"headerAlign"`
	HeaderMode      HeaderMode      `json:"headerMode" yaml:"headerMode"`
	ContentFont     Font            `json:"contentFont" yaml:"contentFont"`
	ContentColor    Color           `json:"contentColor" yaml:"contentColor"`
	ShowGrid        bool            `json:"showGrid" yaml:"showGrid"`
	GridStrokeWidth float64         `json:"gridStrokeWidth" yaml:"gridStrokeWidth"`
	GridColor       Color           `json:"gridColor" yaml:"gridColor"`
}

// DefaultStyle 返回默认样式：1mm 边距、显示 0.5mm 黑色网格、表头仅首个 frame。
func DefaultStyle() Style {
	return Style{
		CellMargin:      1,
		HeaderFont:      Font{Size: 10 * PtToMm},
		HeaderAlign:     HeaderFollowColumn,
		HeaderMode:      FirstFrame,
		ContentFont:     Font{Size: 10 * PtToMm},
		ShowGrid:        true,
		GridStrokeWidth: 0.5,
	}
}

// Validate 检查边距与线宽非负。
func (s Style) Validate() error {
	if s.CellMargin < 0 {
		return &StyleError{Field: "cellMargin", Value: s.CellMargin}
	}
	if s.GridStrokeWidth < 0 {
		return &StyleError{Field: "gridStrokeWidth", Value: s.GridStrokeWidth}
	}
	return nil
}

// Stroke 返回实际占用的网格线宽，未显示网格时为 0。
func (s Style) Stroke() float64 {
	if !s.ShowGrid {
		return 0
	}
	return s.GridStrokeWidth
}

// FrameGeometry 描述单个 frame 中的表格区域。
// RowStart/RowEnd 为左闭右开的内容行区间。
type FrameGeometry struct {
	Index     int     `json:"index"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Available float64 `json:"available"`
	Auto      bool    `json:"auto"`
	RowStart  int     `json:"rowStart"`
	RowEnd    int     `json:"rowEnd"`
	HasHeader bool    `json:"hasHeader"`
}

// Rows 返回该 frame 中的内容行数（不含表头）。
func (g FrameGeometry) Rows() int { return g.RowEnd - g.RowStart }

// Empty 表示该 frame 没有内容行。
func (g FrameGeometry) Empty() bool { return g.RowEnd <= g.RowStart }

// Segment 是一条网格线段，坐标相对于 frame 左上角。
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// CellBox 是一个单元格内容的放置矩形（已扣除边距），坐标相对于 frame 左上角。
// Row 为 -1 表示表头单元格。
type CellBox struct {
	Row      int       `json:"row"`
	Column   int       `json:"column"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Text     string    `json:"text"`
	Align    Alignment `json:"align"`
	IsHeader bool      `json:"isHeader"`
}

// FrameLayout 是一个 frame 完整的可绘制结果。
type FrameLayout struct {
	Geometry FrameGeometry `json:"geometry"`
	Lines    []Segment     `json:"lines,omitempty"`
	Cells    []CellBox     `json:"cells"`
}

// DocumentMeta 保存输出文档的元信息。
type DocumentMeta struct {
	Title    string   `json:"title" yaml:"title,omitempty"`
	Author   string   `json:"author" yaml:"author,omitempty"`
	Subject  string   `json:"subject" yaml:"subject,omitempty"`
	Creator  string   `json:"creator" yaml:"creator,omitempty"`
	Keywords []string `json:"keywords" yaml:"keywords,omitempty"`
}

// Result 保存整张表的布局：列宽、行高与每个 frame 的绘制结果。
type Result struct {
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	ColumnWidths ColumnWidths  `json:"columnWidths"`
	RowHeight    float64       `json:"rowHeight"`
	HeaderHeight float64       `json:"headerHeight"`
	Style        Style         `json:"style"`
	Frames       []FrameLayout `json:"frames"`
	Meta         DocumentMeta  `json:"meta"`
	// Warnings 记录非致命问题（例如 frame 高度不足）。
	Warnings []string `json:"warnings,omitempty"`
}
