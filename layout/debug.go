package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
)

// EncodeDebugJSON 将布局结果（列宽、每个 frame 的行区间、网格线与单元格）写为缩进 JSON。
// 单元格文本原样输出，不转义 <、> 与 &。
func EncodeDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return errors.New("layout: no result to encode")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

// WriteDebugJSON 与 EncodeDebugJSON 相同，但写入文件；编码失败时不留下半截文件。
func WriteDebugJSON(res *Result, path string) error {
	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
