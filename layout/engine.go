package layout

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/framegrid/binding"
)

// Engine 串联列宽计算与分页：持有当前内容、列宽与分页游标。
// Engine 不是并发安全的，调用方需保证 Refresh 与查询不会交错执行。
type Engine struct {
	source    DataSource
	measurer  Measurer
	logger    logrus.FieldLogger
	maxFrames int
	meta      DocumentMeta
	data      any

	columns Columns
	style   Style
	frames  FrameSequence

	// 以下字段由 apply 整体替换
	ready bool
	state layoutState
}

// layoutState 是一次完整布局计算的产物；计算失败时不会替换引擎当前状态。
type layoutState struct {
	contents     Contents
	widths       ColumnWidths
	labels       []string
	rowHeight    float64
	headerHeight float64
	grid         Grid
	paginator    *Paginator
	// warned 记录已写入日志的 frame，同一分页结果的警告只记录一次
	warned map[int]bool
}

// NewEngine 创建引擎；在第一次 Refresh 之前没有任何内容与列宽。
func NewEngine(source DataSource, m Measurer, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	maxFrames := opts.MaxFrames
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	frames := opts.Frames
	if frames == nil {
		frames = Heights(nil)
	}
	return &Engine{
		source:    source,
		measurer:  m,
		logger:    logger,
		maxFrames: maxFrames,
		meta:      opts.Meta,
		data:      opts.Data,
		columns:   append(Columns(nil), opts.Columns...),
		style:     opts.Style,
		frames:    frames,
	}
}

// Refresh 重新拉取内容并完整地重新计算列宽与分页。
// 任一步骤失败时保留之前的内容与列宽不变。
func (e *Engine) Refresh() error {
	if e.source == nil {
		return &DataFetchError{Err: errors.New("未配置数据源")}
	}
	contents, err := e.source.FetchContents(append(Columns(nil), e.columns...))
	if err != nil {
		return &DataFetchError{Err: err}
	}
	contents = contents.Clone()
	for i, row := range contents {
		if len(row) != len(e.columns) {
			return &DataFetchError{Err: fmt.Errorf("第 %d 行有 %d 个单元格，应为 %d 个", i, len(row), len(e.columns))}
		}
	}
	st, err := e.compute(contents, e.columns, e.style, e.frames)
	if err != nil {
		return err
	}
	e.state = st
	e.ready = true
	e.logger.WithFields(logrus.Fields{
		"rows":    len(contents),
		"columns": len(e.columns),
		"width":   st.grid.Width(),
	}).Debug("table refreshed")
	return nil
}

// SetColumns 替换列定义。列的数据源键可能变化，因此已刷新过的引擎会重新拉取内容。
func (e *Engine) SetColumns(columns Columns) error {
	prev := e.columns
	e.columns = append(Columns(nil), columns...)
	if !e.ready {
		return nil
	}
	if err := e.Refresh(); err != nil {
		e.columns = prev
		return err
	}
	return nil
}

// SetStyle 替换样式快照，并基于当前内容重新布局。
func (e *Engine) SetStyle(style Style) error {
	if err := style.Validate(); err != nil {
		return err
	}
	if e.ready {
		st, err := e.compute(e.state.contents, e.columns, style, e.frames)
		if err != nil {
			return err
		}
		e.state = st
	}
	e.style = style
	return nil
}

// SetFrames 替换 frame 高度序列；列宽不变，分页重新开始。
func (e *Engine) SetFrames(frames FrameSequence) {
	if frames == nil {
		frames = Heights(nil)
	}
	e.frames = frames
	if e.ready {
		e.state.paginator = e.newPaginator(e.state, e.style, frames)
		e.state.warned = map[int]bool{}
	}
}

func (e *Engine) compute(contents Contents, columns Columns, style Style, frames FrameSequence) (layoutState, error) {
	if err := style.Validate(); err != nil {
		return layoutState{}, err
	}
	if len(columns) == 0 {
		return layoutState{}, &EmptyColumnSetError{Op: "Refresh"}
	}
	if e.measurer == nil {
		return layoutState{}, errors.New("layout: 缺少文本度量 Measurer")
	}
	labels := e.headerLabels(columns)
	visible := style.HeaderMode.VisibleAnywhere()
	widths, err := ComputeMaxWidths(columns, labels, contents, visible, style.ContentFont, style.HeaderFont, style.CellMargin, e.measurer)
	if err != nil {
		return layoutState{}, err
	}

	stroke := style.Stroke()
	contentLine, err := e.measurer.LineHeight(style.ContentFont)
	if err != nil {
		return layoutState{}, fmt.Errorf("layout: 计算内容行高失败: %w", err)
	}
	st := layoutState{
		contents:  contents,
		widths:    widths,
		labels:    labels,
		rowHeight: contentLine + 2*style.CellMargin + stroke,
	}
	if visible {
		headerLine, err := e.measurer.LineHeight(style.HeaderFont)
		if err != nil {
			return layoutState{}, fmt.Errorf("layout: 计算表头行高失败: %w", err)
		}
		st.headerHeight = headerLine + 2*style.CellMargin + stroke
	}
	st.grid = NewGrid(widths, st.rowHeight, st.headerHeight, style)
	st.paginator = e.newPaginator(st, style, frames)
	st.warned = map[int]bool{}
	return st, nil
}

func (e *Engine) newPaginator(st layoutState, style Style, frames FrameSequence) *Paginator {
	return &Paginator{
		TotalRows:    len(st.contents),
		Heights:      frames,
		RowHeight:    st.rowHeight,
		HeaderHeight: st.headerHeight,
		EdgeHeight:   style.Stroke(),
		Mode:         style.HeaderMode,
		Width:        st.grid.Width(),
	}
}

// headerLabels 返回各列表头文本，支持 ${meta.title} 与数据中的 ${path} 插值。
func (e *Engine) headerLabels(columns Columns) []string {
	scope := map[string]interface{}{
		"meta": map[string]interface{}{
			"title":   e.meta.Title,
			"author":  e.meta.Author,
			"subject": e.meta.Subject,
			"creator": e.meta.Creator,
		},
	}
	if m, ok := e.data.(map[string]interface{}); ok {
		for k, v := range m {
			if k == "meta" {
				continue
			}
			scope[k] = v
		}
	}
	labels := make([]string, len(columns))
	for i, col := range columns {
		labels[i] = SingleLine(binding.Interpolate(col.Heading, scope))
	}
	return labels
}

// Ready 表示引擎是否已成功刷新过。
func (e *Engine) Ready() bool { return e.ready }

func (e *Engine) Columns() Columns { return append(Columns(nil), e.columns...) }

func (e *Engine) Style() Style { return e.style }

// Contents 返回当前内容的副本。
func (e *Engine) Contents() Contents { return e.state.contents.Clone() }

// ColumnWidths 返回当前列宽的副本。
func (e *Engine) ColumnWidths() ColumnWidths { return append(ColumnWidths(nil), e.state.widths...) }

// HeaderLabels 返回插值后的表头文本。
func (e *Engine) HeaderLabels() []string { return append([]string(nil), e.state.labels...) }

func (e *Engine) RowHeight() float64 { return e.state.rowHeight }

func (e *Engine) HeaderHeight() float64 { return e.state.headerHeight }

func (e *Engine) Grid() Grid { return e.state.grid }

// FixedFrameSize 返回第 frameIndex 个 frame 的表格宽度。列不会按 frame 重新排布，所有 frame 宽度相同。
func (e *Engine) FixedFrameSize(frameIndex int) float64 {
	if !e.ready {
		return 0
	}
	return e.state.grid.Width()
}

// MinFrameSize 返回 frame 的最小尺寸：宽度为表格宽度，高度仅容纳表头（该 frame 显示表头时）。
func (e *Engine) MinFrameSize(frameIndex int) (float64, float64) {
	if !e.ready {
		return 0, 0
	}
	if !e.style.HeaderMode.HasHeader(frameIndex) {
		return e.state.grid.Width(), 0
	}
	return e.state.grid.Width(), e.style.Stroke() + e.state.headerHeight
}

// Frame 按需返回第 frameIndex 个 frame 的几何信息；frame 高度不足时返回警告错误，
// 几何信息依然可用。
func (e *Engine) Frame(frameIndex int) (FrameGeometry, error) {
	if !e.ready {
		return FrameGeometry{}, errors.New("layout: 引擎尚未刷新")
	}
	g, warn := e.state.paginator.Frame(frameIndex)
	if warn != nil {
		e.warn(warn)
	}
	return g, warn
}

// Frames 返回放置全部内容行所需的 frame 列表以及分页过程中的警告。
func (e *Engine) Frames() ([]FrameGeometry, []error, error) {
	if !e.ready {
		return nil, nil, errors.New("layout: 引擎尚未刷新")
	}
	frames, warnings, err := e.state.paginator.Walk(e.maxFrames)
	for _, w := range warnings {
		e.warn(w)
	}
	return frames, warnings, err
}

// TotalSize 返回表格的逻辑总尺寸：宽度固定，高度为各 frame 中表头与内容行高度之和。
func (e *Engine) TotalSize() (float64, float64) {
	if !e.ready {
		return 0, 0
	}
	frames, _, _ := e.state.paginator.Walk(e.maxFrames)
	height := 0.0
	for _, g := range frames {
		height += e.state.grid.Height(g.Rows(), g.HasHeader)
	}
	return e.state.grid.Width(), height
}

// FrameLayout 返回第 frameIndex 个 frame 的网格线与单元格。
func (e *Engine) FrameLayout(frameIndex int) (FrameLayout, error) {
	g, err := e.Frame(frameIndex)
	if err != nil && !IsWarning(err) {
		return FrameLayout{}, err
	}
	return e.frameLayout(g), err
}

func (e *Engine) frameLayout(g FrameGeometry) FrameLayout {
	grid := e.state.grid
	return FrameLayout{
		Geometry: g,
		Lines:    grid.Segments(g),
		Cells:    grid.Cells(g, e.state.labels, e.state.contents, e.columns, e.style.HeaderAlign),
	}
}

// Layout 生成全部 frame 的绘制结果，供渲染器与调试输出使用。
// 若分页提前终止（ErrFrameLimit），返回已完成部分与该错误。
func (e *Engine) Layout() (*Result, error) {
	frames, warnings, err := e.Frames()
	if frames == nil && err != nil {
		return nil, err
	}
	width, height := e.TotalSize()
	res := &Result{
		Width:        width,
		Height:       height,
		ColumnWidths: e.ColumnWidths(),
		RowHeight:    e.state.rowHeight,
		HeaderHeight: e.state.headerHeight,
		Style:        e.style,
		Frames:       make([]FrameLayout, 0, len(frames)),
		Meta:         e.meta,
	}
	for _, g := range frames {
		res.Frames = append(res.Frames, e.frameLayout(g))
	}
	for _, w := range warnings {
		res.Warnings = append(res.Warnings, w.Error())
	}
	return res, err
}

func (e *Engine) warn(err error) {
	var ih *InsufficientFrameHeightError
	if errors.As(err, &ih) {
		if e.state.warned[ih.Frame] {
			return
		}
		e.state.warned[ih.Frame] = true
		e.logger.WithFields(logrus.Fields{
			"frame":     ih.Frame,
			"available": ih.Available,
			"required":  ih.Required,
		}).Warn("frame too short for table content")
		return
	}
	e.logger.Warn(err.Error())
}
