package layout

import (
	"fmt"
	"math"
)

// ColumnWidths 记录每列的最终宽度（含两侧边距），下标与列顺序一致。
type ColumnWidths []float64

// Total 返回列宽之和（不含网格线）。
func (w ColumnWidths) Total() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// ComputeMaxWidths 计算每列所需的最小宽度：
// width = 2*margin + max(表头宽度（表头在任一 frame 可见时）, 各行单元格宽度)。
// 列上设置了显式宽度时直接使用该宽度，不做测量（但不小于 2*margin）。
func ComputeMaxWidths(columns Columns, headerLabels []string, contents Contents, headerVisibleAnywhere bool, contentFont, headerFont Font, cellMargin float64, m Measurer) (ColumnWidths, error) {
	if len(columns) == 0 {
		return nil, &EmptyColumnSetError{Op: "ComputeMaxWidths"}
	}
	minWidth := 2 * cellMargin
	widths := make(ColumnWidths, len(columns))
	for i, col := range columns {
		if col.Width > 0 {
			widths[i] = math.Max(col.Width, minWidth)
			continue
		}
		if m == nil {
			return nil, fmt.Errorf("layout: 第 %d 列需要自动列宽，但缺少 Measurer", i)
		}
		maxText := 0.0
		if headerVisibleAnywhere && i < len(headerLabels) && headerLabels[i] != "" {
			w, err := m.TextWidth(headerLabels[i], headerFont)
			if err != nil {
				return nil, fmt.Errorf("layout: 测量第 %d 列表头失败: %w", i, err)
			}
			maxText = math.Max(maxText, w)
		}
		for r, row := range contents {
			if i >= len(row) {
				continue
			}
			text := row[i].String()
			if text == "" {
				continue
			}
			w, err := m.TextWidth(text, contentFont)
			if err != nil {
				return nil, fmt.Errorf("layout: 测量第 %d 行第 %d 列失败: %w", r, i, err)
			}
			maxText = math.Max(maxText, w)
		}
		widths[i] = minWidth + maxText
	}
	return widths, nil
}
