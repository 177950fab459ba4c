package layout

// Grid 根据列宽与行高生成网格线与单元格放置矩形，纯几何计算。
// 坐标相对于 frame 左上角；每条线以线宽中心为准。
// RowHeight/HeaderHeight 均包含其下方一条网格线的线宽。
type Grid struct {
	Widths       ColumnWidths
	RowHeight    float64
	HeaderHeight float64
	Margin       float64
	Stroke       float64
	ShowGrid     bool
}

// NewGrid 从样式与已计算的尺寸构造 Grid。
func NewGrid(widths ColumnWidths, rowHeight, headerHeight float64, style Style) Grid {
	return Grid{
		Widths:       widths,
		RowHeight:    rowHeight,
		HeaderHeight: headerHeight,
		Margin:       style.CellMargin,
		Stroke:       style.Stroke(),
		ShowGrid:     style.ShowGrid,
	}
}

// Width 返回表格总宽度：列宽之和加上 n+1 条竖线的线宽。
func (g Grid) Width() float64 {
	return g.Widths.Total() + float64(len(g.Widths)+1)*g.Stroke
}

// Height 返回含 rowCount 行内容（及可选表头）的表格高度。
func (g Grid) Height(rowCount int, includeHeader bool) float64 {
	h := g.Stroke + float64(rowCount)*g.RowHeight
	if includeHeader {
		h += g.HeaderHeight
	}
	return h
}

// HorizontalLines 返回每条横线的 y 偏移：顶边、表头下沿（如有）以及每行的下沿。
func (g Grid) HorizontalLines(rowCount int, includeHeader bool) []float64 {
	y := g.Stroke / 2
	lines := make([]float64, 0, rowCount+2)
	lines = append(lines, y)
	if includeHeader {
		y += g.HeaderHeight
		lines = append(lines, y)
	}
	for i := 0; i < rowCount; i++ {
		y += g.RowHeight
		lines = append(lines, y)
	}
	return lines
}

// VerticalLines 返回每条竖线的 x 偏移：左边缘与每列的右边缘。
func (g Grid) VerticalLines() []float64 {
	x := g.Stroke / 2
	lines := make([]float64, 0, len(g.Widths)+1)
	lines = append(lines, x)
	for _, w := range g.Widths {
		x += w + g.Stroke
		lines = append(lines, x)
	}
	return lines
}

// Segments 返回一个 frame 需要绘制的全部网格线段；未显示网格时返回 nil。
// 没有内容行也没有表头时，只剩表格的外边框（一条横线）。
func (g Grid) Segments(frame FrameGeometry) []Segment {
	if !g.ShowGrid {
		return nil
	}
	hs := g.HorizontalLines(frame.Rows(), frame.HasHeader)
	vs := g.VerticalLines()
	width := g.Width()
	top, bottom := hs[0], hs[len(hs)-1]

	segments := make([]Segment, 0, len(hs)+len(vs))
	for _, y := range hs {
		segments = append(segments, Segment{X1: 0, Y1: y, X2: width, Y2: y})
	}
	if bottom > top {
		for _, x := range vs {
			segments = append(segments, Segment{X1: x, Y1: top, X2: x, Y2: bottom})
		}
	}
	return segments
}

// Cells 返回 frame 中表头与内容单元格的文本放置矩形（已扣除边距）。
func (g Grid) Cells(frame FrameGeometry, labels []string, contents Contents, columns Columns, headerAlign HeaderAlignment) []CellBox {
	lefts := make([]float64, len(g.Widths))
	x := g.Stroke
	for i, w := range g.Widths {
		lefts[i] = x
		x += w + g.Stroke
	}

	cells := make([]CellBox, 0, (frame.Rows()+1)*len(g.Widths))
	y := g.Stroke
	if frame.HasHeader {
		h := g.HeaderHeight - g.Stroke - 2*g.Margin
		for i, w := range g.Widths {
			label := ""
			if i < len(labels) {
				label = labels[i]
			}
			align := AlignLeft
			if i < len(columns) {
				align = columns[i].Align
			}
			cells = append(cells, CellBox{
				Row:      -1,
				Column:   i,
				X:        lefts[i] + g.Margin,
				Y:        y + g.Margin,
				Width:    w - 2*g.Margin,
				Height:   h,
				Text:     label,
				Align:    headerAlign.Resolve(align),
				IsHeader: true,
			})
		}
		y += g.HeaderHeight
	}

	h := g.RowHeight - g.Stroke - 2*g.Margin
	for r := frame.RowStart; r < frame.RowEnd && r < len(contents); r++ {
		row := contents[r]
		for i, w := range g.Widths {
			text := ""
			if i < len(row) {
				text = row[i].String()
			}
			align := AlignLeft
			if i < len(columns) {
				align = columns[i].Align
			}
			cells = append(cells, CellBox{
				Row:    r,
				Column: i,
				X:      lefts[i] + g.Margin,
				Y:      y + g.Margin,
				Width:  w - 2*g.Margin,
				Height: h,
				Text:   text,
				Align:  align,
			})
		}
		y += g.RowHeight
	}
	return cells
}
