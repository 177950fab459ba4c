package layout

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind 标识单元格值的类型。
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindDate
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// CellValue 是单元格值的判别联合：text/number/date/bool/null。
// 零值即为 null。
type CellValue struct {
	kind ValueKind
	text string
	num  float64
	date time.Time
	b    bool
}

func Text(s string) CellValue { return CellValue{kind: KindText, text: s} }
func Number(f float64) CellValue { return CellValue{kind: KindNumber, num: f} }
func Date(t time.Time) CellValue { return CellValue{kind: KindDate, date: t} }
func Bool(b bool) CellValue { return CellValue{kind: KindBool, b: b} }
func Null() CellValue { return CellValue{} }
func (v CellValue) Kind() ValueKind { return v.kind }
func (v CellValue) IsNull() bool { return v.kind == KindNull }

// Float 返回数值；非 number 类型返回 false。
func (v CellValue) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Time 返回日期值；非 date 类型返回 false。
func (v CellValue) Time() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// String 返回单元格的显示文本，列宽测量与绘制都以此为准。
func (v CellValue) String() string {
	switch v.kind {
	case KindText:
		return SingleLine(v.text)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		if v.date.Hour() == 0 && v.date.Minute() == 0 && v.date.Second() == 0 && v.date.Nanosecond() == 0 {
			return v.date.Format("2006-01-02")
		}
		return v.date.Format("2006-01-02 15:04:05")
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// SingleLine 将换行与制表符替换为空格。每个单元格只占一行，行高按单行计算，
// 列宽测量与绘制都使用替换后的文本。
func SingleLine(text string) string {
	if !strings.ContainsAny(text, "\r\n\t") {
		return text
	}
	return lineBreaks.Replace(text)
}

// MarshalText 让调试 JSON 直接输出显示文本。
func (v CellValue) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Row 是一行内容，按列顺序对齐。
type Row []CellValue

// Contents 是整张表的内容行。
type Contents []Row

// Clone 深拷贝内容，引擎持有的内容不与数据源共享底层数组。
func (c Contents) Clone() Contents {
	if c == nil {
		return nil
	}
	out := make(Contents, len(c))
	for i, row := range c {
		out[i] = append(Row(nil), row...)
	}
	return out
}
