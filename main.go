package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/framegrid/config"
	"github.com/ByLCY/framegrid/layout"
	"github.com/ByLCY/framegrid/renderer"
	canvasrenderer "github.com/ByLCY/framegrid/renderer/canvas"
	"github.com/ByLCY/framegrid/source"
)

// options 收集命令行参数。
type options struct {
	input   string
	data    string
	rows    string
	output  string
	debug   string
	export  string
	summary bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "in", "examples/orders.table", "表格文档路径（DSL 或 .yaml）")
	flag.StringVar(&opts.data, "data", "", "JSON 数据文件路径，覆盖文档中的 data.file")
	flag.StringVar(&opts.rows, "rows", "", "记录数组在 JSON 中的路径，覆盖文档中的 data.rows")
	flag.StringVar(&opts.output, "out", "output/table.pdf", "PDF 输出路径")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&opts.export, "export", "", "写出规范化后的文档（.yaml/.yml 为 YAML，其余为 DSL）")
	flag.BoolVar(&opts.summary, "summary", false, "在标准输出打印每个 frame 的分页概要")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := run(opts, os.Stdout, logger); err != nil {
		logger.Fatalf("生成 PDF 失败: %v", err)
	}
	logger.Infof("已生成 PDF：%s", opts.output)
}

// run 串联文档解析、数据拉取、布局与渲染。
func run(opts options, stdout io.Writer, logger logrus.FieldLogger) error {
	doc, err := config.LoadFile(opts.input)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(opts.input)

	if opts.export != "" {
		if err := exportDocument(doc, opts.export); err != nil {
			return err
		}
	}

	src, data, err := dataSource(doc, opts, baseDir)
	if err != nil {
		return err
	}

	pageW, pageH := doc.Frames.PageSize()
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: baseDir,
		Page:    canvasrenderer.Page{Width: pageW, Height: pageH, Margin: doc.Frames.Margin},
	})

	engine := layout.NewEngine(src, r, layout.Options{
		Columns: doc.Columns,
		Style:   doc.Style,
		Frames:  doc.Frames.Heights,
		Meta:    doc.Meta,
		Data:    data,
		Logger:  logger,
	})
	if err := engine.Refresh(); err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	result, err := engine.Layout()
	if result == nil {
		return fmt.Errorf("分页失败: %w", err)
	}
	if err != nil {
		// 分页提前终止时仍输出已完成的 frame，便于排查
		logger.WithError(err).Warn("not every row could be placed")
	}

	if opts.summary {
		writeSummary(stdout, result)
	}
	if opts.debug != "" {
		if err := writeDebug(result, opts.debug); err != nil {
			return err
		}
	}
	return writePDF(r, result, opts.output)
}

// dataSource 解析数据文件：命令行参数优先，其次是文档中的 data 段；相对路径以文档所在目录为准。
func dataSource(doc *config.Document, opts options, baseDir string) (layout.DataSource, any, error) {
	path, rows := doc.Data.File, doc.Data.Rows
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	if opts.data != "" {
		path = opts.data
	}
	if opts.rows != "" {
		rows = opts.rows
	}
	if path == "" {
		return layout.StaticContents{}, nil, nil
	}
	data, err := source.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return source.File{Path: path, Rows: rows}, data, nil
}

func exportDocument(doc *config.Document, path string) error {
	var out []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err := config.MarshalYAML(doc)
		if err != nil {
			return err
		}
		out = raw
	default:
		out = []byte(config.Format(doc))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建导出目录失败: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("写入导出文档失败: %w", err)
	}
	return nil
}

// writeSummary 以表格形式打印每个 frame 的行区间与尺寸。
func writeSummary(w io.Writer, result *layout.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Frame", "Rows", "Header", "Width (mm)", "Height (mm)", "Auto"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoWrapText(false)
	for _, f := range result.Frames {
		g := f.Geometry
		table.Append([]string{
			strconv.Itoa(g.Index),
			fmt.Sprintf("%d-%d", g.RowStart, g.RowEnd),
			strconv.FormatBool(g.HasHeader),
			strconv.FormatFloat(g.Width, 'f', 2, 64),
			strconv.FormatFloat(g.Height, 'f', 2, 64),
			strconv.FormatBool(g.Auto),
		})
	}
	table.SetFooter([]string{"", "", "", "", strconv.FormatFloat(result.Height, 'f', 2, 64), "total"})
	table.Render()
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func writePDF(r renderer.Renderer, result *layout.Result, outputPath string) error {
	if r == nil {
		return errors.New("renderer 不能为空")
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}
