package pipeline

import (
	"errors"
	"fmt"

	"github.com/maliky/schedule-checker-app/internal/model"
)

// ── 流水线结构性错误 ──
//
// 行级异常（缺时间、上下午冲突、学院未登记等）只记入 Report，不中断批处理；
// 以下错误表示规则覆盖缺口或无法安全猜测的数据，必须上抛给调用方。

var (
	// ErrSpecialCaseAmbiguous 多于一行时间含 "/"，不能套用单行拆分规则
	ErrSpecialCaseAmbiguous = errors.New("多行时间包含 \"/\"，无法确定拆分方式")
	// ErrSpecialCaseShape "/" 两侧不是恰好两个子时段
	ErrSpecialCaseShape = errors.New("拆分行的时间不是恰好两个子时段")
)

// FormatError 规范化后的时间串连字符数量不为 1（规范化规则缺口）
type FormatError struct {
	Value string
	Parts int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("时间区间格式错误 %q: 期望恰好 1 个 \"-\"，实际 %d 个", e.Value, e.Parts-1)
}

// TimeResolutionError 无法推断上下午或起止时间不合法
type TimeResolutionError struct {
	Stime    string
	Etime    string
	Meridiem string
	Reason   string
}

func (e *TimeResolutionError) Error() string {
	return fmt.Sprintf("无法解析时间 %s-%s%s: %s", e.Stime, e.Etime, e.Meridiem, e.Reason)
}

// SpecialCaseError 携带所有含 "/" 的行键
type SpecialCaseError struct {
	Rows []int
	Err  error
}

func (e *SpecialCaseError) Error() string {
	return fmt.Sprintf("%v: 行 %v", e.Err, e.Rows)
}

func (e *SpecialCaseError) Unwrap() error { return e.Err }

// RowError 给结构性错误附上原始行，便于修正源数据或规则表
type RowError struct {
	Stage string
	Raw   model.RawOffering
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("[%s] 第 %d 行 (%s %s, days=%q, time=%q, 规范化后=%q): %v",
		e.Stage, e.Raw.No, e.Raw.CourseCode, e.Raw.CourseNo, e.Raw.Days, e.Raw.Time, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
