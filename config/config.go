// Package config turns table documents (DSL or YAML) into the column, style
// and frame settings consumed by the layout engine.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/framegrid/dsl"
	"github.com/ByLCY/framegrid/layout"
)

// DefaultCreator 写入未声明 creator 的文档元信息。
const DefaultCreator = "framegrid"

// Document 是解析后的表格文档。
type Document struct {
	Name      string              `yaml:"name"`
	Version   string              `yaml:"version"`
	Meta      layout.DocumentMeta `yaml:"meta,omitempty"`
	Resources Resources           `yaml:"resources,omitempty"`
	Style     layout.Style        `yaml:"style"`
	Columns   layout.Columns      `yaml:"columns"`
	Frames    Frames              `yaml:"frames"`
	Data      DataBinding         `yaml:"data,omitempty"`
}

// Resources 是文档中声明的字体与命名颜色。
type Resources struct {
	Fonts  []layout.FontResource   `yaml:"fonts,omitempty"`
	Colors map[string]layout.Color `yaml:"colors,omitempty"`
}

// Font 按名称查找声明过的字体资源。
func (r Resources) Font(name string) (layout.FontResource, bool) {
	for _, f := range r.Fonts {
		if f.Name == name {
			return f, true
		}
	}
	return layout.FontResource{}, false
}

// Frames 描述 frame 高度序列与承载 frame 的纸张。
// Heights 中的 layout.AutoHeight 表示随内容增长的 frame。
type Frames struct {
	Page      string         `yaml:"page,omitempty"`
	Landscape bool           `yaml:"landscape,omitempty"`
	Margin    float64        `yaml:"margin,omitempty"`
	Heights   layout.Heights `yaml:"heights"`
}

// PageSize 返回纸张宽高（mm），未声明时为 A4。
func (f Frames) PageSize() (float64, float64) {
	size, ok := pagePresets[strings.ToUpper(f.Page)]
	if !ok {
		size = pagePresets["A4"]
	}
	if f.Landscape {
		return size[1], size[0]
	}
	return size[0], size[1]
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// DataBinding 指定表格行的来源：JSON 文件与其中记录数组的路径。
type DataBinding struct {
	File string `yaml:"file,omitempty"`
	Rows string `yaml:"rows,omitempty"`
}

// DefaultFont 是未声明任何字体时使用的内置字体。
var DefaultFont = layout.FontResource{Name: "Body", Src: "embed:go-regular"}

// Parse 从 DSL 文本解析表格文档。
func Parse(input string) (*Document, error) {
	ast, err := dsl.ParseString(input)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return FromAST(ast)
}

// Load 从 io.Reader 读取 DSL 文档。
func Load(r io.Reader) (*Document, error) {
	ast, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return FromAST(ast)
}

// LoadFile 按扩展名读取文档：.yaml/.yml 为 YAML，其余按 DSL 解析。
func LoadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文档 %s 失败: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return UnmarshalYAML(raw)
	default:
		return Parse(string(raw))
	}
}

// FromAST 把 DSL 语法树转换为文档。段落可以重复出现，后出现的赋值覆盖先前的。
func FromAST(ast *dsl.Document) (*Document, error) {
	doc := &Document{
		Name:    ast.Name,
		Version: ast.Version,
		Meta:    layout.DocumentMeta{Creator: DefaultCreator},
		Style:   layout.DefaultStyle(),
	}
	for _, section := range ast.Sections {
		if err := checkBlock(section.Body()); err != nil {
			return nil, err
		}
	}
	// 资源先于样式收集，样式中可以引用后声明的字体与颜色
	for _, section := range ast.Sections {
		if section.Resources != nil {
			if err := doc.collectResources(section.Body()); err != nil {
				return nil, err
			}
		}
	}
	base := DefaultFont
	if len(doc.Resources.Fonts) > 0 {
		base = doc.Resources.Fonts[0]
	}
	doc.Style.HeaderFont.Resource = base
	doc.Style.ContentFont.Resource = base

	for _, section := range ast.Sections {
		block := section.Body()
		if block == nil {
			continue
		}
		var err error
		switch {
		case section.Meta != nil:
			doc.collectMeta(block)
		case section.Style != nil:
			err = doc.collectStyle(block)
		case section.Columns != nil:
			err = doc.collectColumns(block)
		case section.Frames != nil:
			err = doc.collectFrames(block)
		case section.Data != nil:
			doc.collectData(block)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := doc.Style.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkBlock 拒绝文档中没有对应含义的语句：独立的字符串行与内联对象取值，
// 避免它们被静默忽略。
func checkBlock(block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			return fmt.Errorf("第 %d 行：不支持独立的字符串语句 %q", stmt.Text.Pos.Line, string(stmt.Text.Value))
		case stmt.Assignment != nil && hasInlineObject(stmt.Assignment.Value):
			return fmt.Errorf("第 %d 行：%s 不支持内联对象取值", stmt.Assignment.Pos.Line, stmt.Assignment.Key)
		case stmt.Command != nil:
			if err := checkBlock(stmt.Command.Block); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasInlineObject(v *dsl.Value) bool {
	if v == nil {
		return false
	}
	if v.Object != nil {
		return true
	}
	if v.Array != nil {
		for _, item := range v.Array.Values {
			if hasInlineObject(item) {
				return true
			}
		}
	}
	return false
}

func (d *Document) collectMeta(block *dsl.Block) {
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		v := stmt.Assignment.Value
		switch strings.ToLower(stmt.Assignment.Key) {
		case "title":
			d.Meta.Title = valueToString(v)
		case "author":
			d.Meta.Author = valueToString(v)
		case "subject":
			d.Meta.Subject = valueToString(v)
		case "creator":
			d.Meta.Creator = valueToString(v)
		case "keywords":
			d.Meta.Keywords = valueToStringSlice(v)
		}
	}
}

func (d *Document) collectResources(block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		if stmt.Command == nil {
			continue
		}
		switch stmt.Command.Name {
		case "font":
			font := parseFontResource(stmt.Command)
			if font.Name == "" {
				return fmt.Errorf("第 %d 行：字体资源缺少名称", stmt.Command.Pos.Line)
			}
			d.setFont(font)
		case "color":
			name, value := parseColorResource(stmt.Command)
			if name == "" || value == "" {
				return fmt.Errorf("第 %d 行：颜色资源需要名称与取值", stmt.Command.Pos.Line)
			}
			c, err := parseColor(value)
			if err != nil {
				return err
			}
			if d.Resources.Colors == nil {
				d.Resources.Colors = map[string]layout.Color{}
			}
			d.Resources.Colors[name] = c
		default:
			return fmt.Errorf("第 %d 行：未知的资源类型 %s", stmt.Command.Pos.Line, stmt.Command.Name)
		}
	}
	return nil
}

func (d *Document) setFont(font layout.FontResource) {
	for i, f := range d.Resources.Fonts {
		if f.Name == font.Name {
			d.Resources.Fonts[i] = font
			return
		}
	}
	d.Resources.Fonts = append(d.Resources.Fonts, font)
}

func parseFontResource(cmd *dsl.Command) layout.FontResource {
	if len(cmd.Args) == 0 {
		return layout.FontResource{}
	}
	font := layout.FontResource{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		font.Src = font.Name
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		v := valueToString(stmt.Assignment.Value)
		switch stmt.Assignment.Key {
		case "src":
			font.Src = v
		case "style":
			font.Style = v
		case "family":
			font.Family = v
		case "fallback":
			font.Fallback = v
		}
	}
	return font
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func (d *Document) collectStyle(block *dsl.Block) error {
	s := &d.Style
	for _, stmt := range block.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		raw := valueToString(a.Value)
		var err error
		switch strings.ToLower(a.Key) {
		case "cell-margin", "margin":
			s.CellMargin, err = parseMM(raw)
		case "header-font":
			s.HeaderFont.Resource = d.resolveFont(raw)
		case "header-size":
			s.HeaderFont.Size, err = parseMM(raw)
		case "header-color":
			s.HeaderColor, err = d.resolveColor(raw)
		case "header-align":
			s.HeaderAlign, err = layout.ParseHeaderAlignment(raw)
		case "header-mode":
			s.HeaderMode, err = layout.ParseHeaderMode(raw)
		case "content-font":
			s.ContentFont.Resource = d.resolveFont(raw)
		case "content-size":
			s.ContentFont.Size, err = parseMM(raw)
		case "content-color":
			s.ContentColor, err = d.resolveColor(raw)
		case "show-grid":
			s.ShowGrid, err = strconv.ParseBool(raw)
		case "grid-width":
			s.GridStrokeWidth, err = parseMM(raw)
		case "grid-color":
			s.GridColor, err = d.resolveColor(raw)
		default:
			err = fmt.Errorf("未知的样式属性")
		}
		if err != nil {
			return fmt.Errorf("第 %d 行：样式 %s 取值 %q 无效: %w", a.Pos.Line, a.Key, raw, err)
		}
	}
	return nil
}

func (d *Document) resolveFont(name string) layout.FontResource {
	if f, ok := d.Resources.Font(name); ok {
		return f
	}
	if name == DefaultFont.Name || name == DefaultFont.Src {
		return DefaultFont
	}
	return layout.FontResource{Name: name, Src: name}
}

func (d *Document) resolveColor(value string) (layout.Color, error) {
	if c, ok := d.Resources.Colors[value]; ok {
		return c, nil
	}
	if strings.HasPrefix(value, "#") {
		return parseColor(value)
	}
	return layout.Color{}, fmt.Errorf("未定义的颜色 %s", value)
}

func (d *Document) collectColumns(block *dsl.Block) error {
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		if cmd.Name != "column" {
			return fmt.Errorf("第 %d 行：columns 中只能声明 column，得到 %s", cmd.Pos.Line, cmd.Name)
		}
		col := layout.ColumnSpec{}
		if len(cmd.Args) > 0 {
			col.Source = cmd.Args[0].Value
			col.Heading = col.Source
		}
		if cmd.Block != nil {
			for _, inner := range cmd.Block.Statements {
				a := inner.Assignment
				if a == nil {
					continue
				}
				raw := valueToString(a.Value)
				var err error
				switch a.Key {
				case "heading", "header":
					col.Heading = raw
				case "align":
					col.Align, err = layout.ParseAlignment(raw)
				case "width":
					col.Width, err = parseMM(raw)
				case "source", "field":
					col.Source = raw
				default:
					err = fmt.Errorf("未知的列属性")
				}
				if err != nil {
					return fmt.Errorf("第 %d 行：列 %s 的 %s 取值 %q 无效: %w", a.Pos.Line, col.Source, a.Key, raw, err)
				}
			}
		}
		if col.Width < 0 {
			return fmt.Errorf("第 %d 行：列 %s 的宽度不能为负", cmd.Pos.Line, col.Source)
		}
		d.Columns = append(d.Columns, col)
	}
	return nil
}

func (d *Document) collectFrames(block *dsl.Block) error {
	for _, stmt := range block.Statements {
		if a := stmt.Assignment; a != nil {
			raw := valueToString(a.Value)
			switch a.Key {
			case "page":
				if _, ok := pagePresets[strings.ToUpper(raw)]; !ok {
					return fmt.Errorf("暂不支持的纸张尺寸：%s", raw)
				}
				d.Frames.Page = raw
			case "orientation":
				d.Frames.Landscape = strings.EqualFold(raw, "landscape")
			case "margin":
				mm, err := parseMM(raw)
				if err != nil {
					return fmt.Errorf("页边距 %q 无效: %w", raw, err)
				}
				d.Frames.Margin = mm
			}
			continue
		}
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		if cmd.Name != "frame" || len(cmd.Args) == 0 {
			return fmt.Errorf("第 %d 行：frames 中应为 frame <高度|auto>", cmd.Pos.Line)
		}
		raw := cmd.Args[0].Value
		if strings.EqualFold(raw, "auto") {
			d.Frames.Heights = append(d.Frames.Heights, layout.AutoHeight)
			continue
		}
		h, err := parseMM(raw)
		if err != nil || h <= 0 {
			return fmt.Errorf("第 %d 行：frame 高度 %q 无效", cmd.Pos.Line, raw)
		}
		d.Frames.Heights = append(d.Frames.Heights, h)
	}
	return nil
}

func (d *Document) collectData(block *dsl.Block) {
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "rows":
			d.Data.Rows = valueToString(stmt.Assignment.Value)
		case "file":
			d.Data.File = valueToString(stmt.Assignment.Value)
		}
	}
}

func parseMM(raw string) (float64, error) {
	l, err := layout.ParseLength(raw)
	if err != nil {
		return 0, err
	}
	return l.ToMM(), nil
}

func parseColor(value string) (layout.Color, error) {
	hex := strings.TrimPrefix(value, "#")
	switch len(hex) {
	case 3:
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	case 6, 8:
	default:
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	rgb, err := strconv.ParseUint(hex[0:6], 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return layout.Color{R: int(rgb>>16) & 0xFF, G: int(rgb>>8) & 0xFF, B: int(rgb) & 0xFF}, nil
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
