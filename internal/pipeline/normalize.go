package pipeline

import (
	"regexp"
	"strings"

	"github.com/maliky/schedule-checker-app/internal/model"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseSpace 去除首尾空白并把内部连续空白压缩为一个空格
func CollapseSpace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeHeader 列名规范化：小写、空格转下划线、去掉首尾的 "."
//
//	"Course N0. " → "course_n0"
func NormalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.Trim(strings.TrimSpace(s), ".")
}

// NormalizeText 文本字段清洗：所有文本去空白，days 与 time 额外转小写
//
// 课程名、教师名保留原大小写。幂等。
func NormalizeText(in []model.Offering) []model.Offering {
	out := make([]model.Offering, len(in))
	for i, o := range in {
		o.CourseCode = CollapseSpace(o.CourseCode)
		o.CourseNo = CollapseSpace(o.CourseNo)
		o.CourseTitle = CollapseSpace(o.CourseTitle)
		o.Credit = CollapseSpace(o.Credit)
		o.Section = CollapseSpace(o.Section)
		o.Instructor = CollapseSpace(o.Instructor)
		o.Location = CollapseSpace(o.Location)
		o.Days = strings.ToLower(CollapseSpace(o.Days))
		o.Time = strings.ToLower(CollapseSpace(o.Time))
		o.Capacity = CollapseSpace(o.Capacity)
		out[i] = o
	}
	return out
}
