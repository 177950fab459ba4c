package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/framegrid/fonts"
	"github.com/ByLCY/framegrid/layout"
	"github.com/ByLCY/framegrid/renderer"
)

// headerFill 是表头单元格的底色。
var headerFill = canvas.Hex("#f8f8f8")

// Renderer draws table frames via github.com/tdewolff/canvas and doubles as
// the text measurer used by the layout engine, so widths match what is drawn.
type Renderer struct {
	baseDir string
	page    Page

	// injected resources
	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily

	widthMu sync.Mutex
	widths  map[string]float64
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Page 描述承载 frame 的纸张（mm）。宽高为 0 时纸张贴合 frame 尺寸；
// frame 比纸张高（auto frame）时纸张随之加高。
type Page struct {
	Width  float64
	Height float64
	Margin float64
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Page    Page
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		page:         opts.Page,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
		widths:       map[string]float64{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // ignore error here; will be caught when actually used
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// TextWidth 实现 layout.Measurer：返回单行文本的宽度（mm），换行按空格计，与 drawCell 的绘制一致。
// 结果按字体与文本缓存，同一次刷新中重复的单元格只测量一次。
func (r *Renderer) TextWidth(text string, font layout.Font) (float64, error) {
	text = layout.SingleLine(text)
	key := font.Key() + "\x00" + text
	r.widthMu.Lock()
	w, ok := r.widths[key]
	r.widthMu.Unlock()
	if ok {
		return w, nil
	}

	face, err := r.fontFace(font.Resource, toPt(font.Size), layout.Color{})
	if err != nil {
		return 0, err
	}
	w = face.TextWidth(text)

	r.widthMu.Lock()
	r.widths[key] = w
	r.widthMu.Unlock()
	return w, nil
}

// LineHeight 实现 layout.Measurer：字体的行高（mm）。
func (r *Renderer) LineHeight(font layout.Font) (float64, error) {
	face, err := r.fontFace(font.Resource, toPt(font.Size), layout.Color{})
	if err != nil {
		return 0, err
	}
	if h := face.Metrics().LineHeight; h > 0 {
		return h, nil
	}
	return font.Size, nil
}

// Render renders every frame of the result onto its own PDF page.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Frames) == 0 {
		return nil, fmt.Errorf("缺少可渲染的 frame")
	}

	var buf bytes.Buffer
	var writer *pdf.PDF
	for i, frame := range result.Frames {
		width, height := r.pageSize(frame.Geometry)
		if i == 0 {
			writer = pdf.New(&buf, width, height, nil)
			r.applyMeta(writer, result.Meta)
		} else {
			writer.NewPage(width, height)
		}
		c := canvas.New(width, height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawFrame(ctx, r.page.Margin, r.page.Margin, frame, result); err != nil {
			return nil, fmt.Errorf("绘制第 %d 个 frame 失败: %w", frame.Geometry.Index, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) pageSize(g layout.FrameGeometry) (float64, float64) {
	width := math.Max(r.page.Width, g.Width+2*r.page.Margin)
	height := math.Max(r.page.Height, g.Height+2*r.page.Margin)
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return width, height
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawFrame 依次绘制表头底色、网格线与单元格文本，(ox, oy) 为 frame 左上角。
func (r *Renderer) drawFrame(ctx *canvas.Context, ox, oy float64, frame layout.FrameLayout, result *layout.Result) error {
	style := result.Style
	g := frame.Geometry
	if g.HasHeader && result.HeaderHeight > 0 {
		ctx.SetFillColor(headerFill)
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(ox, oy, canvas.Rectangle(g.Width, style.Stroke()+result.HeaderHeight))
	}

	r.drawLines(ctx, ox, oy, frame.Lines, style)

	for _, cell := range frame.Cells {
		font, col := style.ContentFont, style.ContentColor
		if cell.IsHeader {
			font, col = style.HeaderFont, style.HeaderColor
		}
		if err := r.drawCell(ctx, ox, oy, cell, font, col); err != nil {
			return err
		}
	}
	return nil
}

// drawLines 绘制网格线段（毫米单位）。
func (r *Renderer) drawLines(ctx *canvas.Context, ox, oy float64, lines []layout.Segment, style layout.Style) {
	if len(lines) == 0 || style.GridStrokeWidth <= 0 {
		return
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(colorFromLayout(style.GridColor))
	ctx.SetStrokeWidth(style.GridStrokeWidth)
	for _, ln := range lines {
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ox+ln.X1, oy+ln.Y1, p)
	}
}

func (r *Renderer) drawCell(ctx *canvas.Context, ox, oy float64, cell layout.CellBox, font layout.Font, col layout.Color) error {
	if cell.Text == "" {
		return nil
	}
	// 字号为 mm；创建字体面需要 pt，这里做一次 mm→pt。
	face, err := r.fontFace(font.Resource, toPt(font.Size), col)
	if err != nil {
		return err
	}

	var textAlign canvas.TextAlign
	anchorX := ox + cell.X
	switch cell.Align {
	case layout.AlignCenter:
		textAlign = canvas.Center
		anchorX += cell.Width / 2
	case layout.AlignRight:
		textAlign = canvas.Right
		anchorX += cell.Width
	default:
		textAlign = canvas.Left
	}

	// 基线位置：以行顶部加上字体上升部（Ascent）
	baseline := oy + cell.Y + face.Metrics().Ascent
	ctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, cellText(cell, face), textAlign))
	return nil
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		src = "embed:go-regular"
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
	}
	if strings.HasPrefix(src, "embed:") || strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		return fonts.LoadWithFallback(src, font.Fallback)
	}
	// Path based
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return fonts.LoadWithFallback(path, font.Fallback)
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load("embed:go-regular")
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("framegrid-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s|%s", font.Name, font.Src, font.Style, font.Fallback)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// cellText 返回单元格实际绘制的单行文本：换行替换为空格，超出单元格宽度的部分被截断。
func cellText(cell layout.CellBox, face *canvas.FontFace) string {
	return fitToWidth(layout.SingleLine(cell.Text), cell.Width, face)
}

// fitToWidth 截断超出 limit（mm）的文本。显式列宽比内容窄时单元格内容被裁剪，而不是溢出到相邻列。
func fitToWidth(text string, limit float64, face *canvas.FontFace) string {
	if limit <= 0 || face.TextWidth(text) <= limit {
		return text
	}
	var builder strings.Builder
	for _, r := range text {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit {
			runes := []rune(builder.String())
			return string(runes[:len(runes)-1])
		}
	}
	return builder.String()
}
