package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/framegrid/layout"
)

// MarshalYAML 以 YAML 形式输出文档，字段与 DSL 一一对应。
func MarshalYAML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("编码 YAML 失败: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("编码 YAML 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML 读取 YAML 文档。未出现的样式字段取默认样式，未知字段视为错误。
func UnmarshalYAML(raw []byte) (*Document, error) {
	doc := &Document{
		Meta:  layout.DocumentMeta{Creator: DefaultCreator},
		Style: layout.DefaultStyle(),
	}
	doc.Style.HeaderFont.Resource = DefaultFont
	doc.Style.ContentFont.Resource = DefaultFont

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("解析 YAML 失败: %w", err)
	}
	if err := doc.Style.Validate(); err != nil {
		return nil, err
	}
	for _, col := range doc.Columns {
		if col.Width < 0 {
			return nil, fmt.Errorf("列 %s 的宽度不能为负", col.Source)
		}
	}
	return doc, nil
}
