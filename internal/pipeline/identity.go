package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/internal/catalog"
	"github.com/maliky/schedule-checker-app/internal/model"
)

// YearUnknown 无法从课程号推断年级
const YearUnknown = "Unknown"

var yearByDigit = map[rune]string{
	'1': "Freshman",
	'2': "Sophomore",
	'3': "Junior",
	'4': "Senior",
	'5': "Senior",
}

// InferYear 取课程号中第一个数字推断年级
func InferYear(courseNo string) string {
	for _, r := range courseNo {
		if r >= '0' && r <= '9' {
			if year, ok := yearByDigit[r]; ok {
				return year
			}
			return YearUnknown
		}
	}
	return YearUnknown
}

// FormatSection 班号按整数输出（表格里常被读成 "1.0"）
func FormatSection(section string) string {
	f, err := strconv.ParseFloat(section, 64)
	if err != nil {
		return section
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}

// BuildCID 课程班标识 course_code_course_no_s{section}
func BuildCID(code, no, section string) string {
	return fmt.Sprintf("%s_%s_s%s", code, no, FormatSection(section))
}

// AssignIdentity 统一课程代码、生成标识、推断年级并查找学院
//
// 学院未登记只记警告并留空；重复标识记入报告，不做去重。
func AssignIdentity(in []model.Offering, cat *catalog.Catalog, rep *Report, logger *zap.Logger) []model.Offering {
	out := make([]model.Offering, len(in))
	type cidKey struct {
		cid  string
		part int
	}
	firstRow := make(map[cidKey]int, len(in))
	var unmapped []string

	for i, o := range in {
		o.CourseCode = cat.Alias(o.CourseCode)
		o.CID = BuildCID(o.CourseCode, o.CourseNo, o.Section)
		o.CIDNoSection = o.CourseCode + "_" + o.CourseNo
		o.Year = InferYear(o.CourseNo)

		if o.Year == YearUnknown {
			rep.Add(model.Anomaly{
				Row: o.No, Stage: StageIdentity, Kind: model.AnomalyUnknownYear,
				Field: "course_no", Value: o.CourseNo,
				Message: "课程号中没有可识别的年级数字",
			})
		}

		key := cidKey{cid: o.CID, part: o.Part}
		if prev, seen := firstRow[key]; seen {
			rep.Add(model.Anomaly{
				Row: o.No, Stage: StageIdentity, Kind: model.AnomalyDuplicateCID,
				Field: "cid", Value: o.CID,
				Message: fmt.Sprintf("课程班标识与第 %d 行重复", prev),
			})
		} else {
			firstRow[key] = o.No
		}

		o.College = ""
		lookup := catalog.Key{CID: o.CIDNoSection, Title: o.CourseTitle, Year: o.Year}
		if college, ok := cat.College(lookup); ok {
			o.College = college
		} else {
			unmapped = append(unmapped, fmt.Sprintf("(%s, %s, %s)", lookup.CID, lookup.Title, lookup.Year))
			rep.Add(model.Anomaly{
				Row: o.No, Stage: StageIdentity, Kind: model.AnomalyUnmappedCollege,
				Field: "college", Value: o.CIDNoSection,
				Message: "课程未登记学院归属",
			})
		}
		out[i] = o
	}

	if len(unmapped) > 0 && logger != nil {
		logger.Warn("存在未登记学院的课程，请补充静态查找表",
			zap.Int("count", len(unmapped)),
			zap.String("keys", strings.Join(unmapped, "; ")),
		)
	}
	return out
}
