package layout

import (
	"errors"
	"fmt"
)

// 布局错误均为局部、可恢复的错误；引擎在出错时保留上一次成功的状态。
var (
	ErrEmptyColumns       = errors.New("layout: table has no columns")
	ErrDataFetch          = errors.New("layout: fetching table contents failed")
	ErrInsufficientHeight = errors.New("layout: frame too short for table content")
	ErrFrameLimit         = errors.New("layout: frame limit reached before all rows were placed")
	ErrInvalidStyle       = errors.New("layout: invalid style")
)

// EmptyColumnSetError 表示在没有任何列的情况下请求布局。
type EmptyColumnSetError struct {
	Op string
}

func (e *EmptyColumnSetError) Error() string {
	return fmt.Sprintf("layout.%s: table has no columns", e.Op)
}

func (e *EmptyColumnSetError) Is(target error) bool { return target == ErrEmptyColumns }

// DataFetchError 包装外部数据源返回的错误。
type DataFetchError struct {
	Err error
}

func (e *DataFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("layout.Refresh: fetching contents: %v", e.Err)
	}
	return "layout.Refresh: fetching contents failed"
}

func (e *DataFetchError) Unwrap() error { return e.Err }

func (e *DataFetchError) Is(target error) bool { return target == ErrDataFetch }

// InsufficientFrameHeightError 是警告级别的信号：某个 frame 连一行内容都放不下。
// 分页仍然给出该 frame 的几何信息（空行区间），由宿主决定是否加高 frame。
type InsufficientFrameHeightError struct {
	Frame     int
	Available float64
	Required  float64
}

func (e *InsufficientFrameHeightError) Error() string {
	return fmt.Sprintf("layout: frame %d has %.2fmm available, needs at least %.2fmm", e.Frame, e.Available, e.Required)
}

func (e *InsufficientFrameHeightError) Is(target error) bool { return target == ErrInsufficientHeight }

// StyleError 表示样式中的非法数值（边距或线宽为负）。
type StyleError struct {
	Field string
	Value float64
}

func (e *StyleError) Error() string {
	return fmt.Sprintf("layout: style %s must not be negative, got %g", e.Field, e.Value)
}

func (e *StyleError) Is(target error) bool { return target == ErrInvalidStyle }

// IsWarning 判断错误是否只是警告（布局结果仍然可用）。
func IsWarning(err error) bool {
	return errors.Is(err, ErrInsufficientHeight)
}
