// Package fonts resolves font sources used by table documents: built-in Go
// fonts addressed as "embed:<name>" and TrueType files on disk.
package fonts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

var builtin = map[string][]byte{
	"go-regular":     goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,
	"go-medium":      gomedium.TTF,
	"go-mono":        gomono.TTF,
	"go-mono-bold":   gomonobold.TTF,
}

// Builtin 返回全部内置字体名称（已排序）。
func Builtin() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load 返回字体字节数据，src 可写为 "embed:go-bold"、"built-in:go-bold" 或 TTF 文件路径。
func Load(src string) ([]byte, error) {
	if name, ok := builtinName(src); ok {
		data, found := builtin[name]
		if !found {
			return nil, fmt.Errorf("内置字体 %s 不存在（可用：%s）", name, strings.Join(Builtin(), ", "))
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// LoadWithFallback 依次尝试 src 与 fallback，都为空时使用 go-regular。
func LoadWithFallback(src, fallback string) ([]byte, error) {
	if src == "" && fallback == "" {
		return goregular.TTF, nil
	}
	data, err := Load(src)
	if err == nil || fallback == "" {
		return data, err
	}
	if fb, fbErr := Load(fallback); fbErr == nil {
		return fb, nil
	}
	return nil, err
}

func builtinName(src string) (string, bool) {
	for _, prefix := range []string{"embed:", "built-in:", "builtin:"} {
		if strings.HasPrefix(src, prefix) {
			return strings.ToLower(strings.TrimPrefix(src, prefix)), true
		}
	}
	return "", false
}
