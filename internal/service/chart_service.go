package service

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/internal/model"
)

// ── 课表甘特图 ──────────────────────────────────────────────
//
// 每个星期一节（周一至周六），每个教室/教师一条泳道，
// 横轴为当天最早开始到最晚结束，按学院着色，有冲突的泳道高亮。
// 输出自包含 HTML，不依赖外部脚本。
// ─────────────────────────────────────────────────────────────

const (
	RoomChartFile       = "room_final_chart.html"
	InstructorChartFile = "instructor_final_chart.html"

	unknownCollege = "Unknown"
)

var chartWeekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var collegePalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Charts 两张图的 HTML
type Charts struct {
	Room       []byte
	Instructor []byte
}

// ChartService 图表渲染接口
type ChartService interface {
	Render(rows []model.ScheduleRow, conflicts []model.Conflict) (*Charts, error)
}

type chartService struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewChartService 创建 ChartService 实例
func NewChartService(logger *zap.Logger) ChartService {
	return &chartService{logger: logger, now: time.Now}
}

type chartBar struct {
	Label   string
	Tooltip string
	Style   template.CSS
}

type chartLane struct {
	Name     string
	Conflict bool
	Bars     []chartBar
}

type chartGroup struct {
	Title string
	Lanes []chartLane
}

type chartDay struct {
	Weekday string
	From    string
	To      string
	Groups  []chartGroup
}

type legendItem struct {
	College string
	Style   template.CSS
}

type chartPage struct {
	Title     string
	Days      []chartDay
	Legend    []legendItem
	Generated string
}

func (s *chartService) Render(rows []model.ScheduleRow, conflicts []model.Conflict) (*Charts, error) {
	colors, legend := collegeColors(rows)
	generated := s.now().Format("2006-01-02 15:04")

	room := chartPage{Title: "教室课表", Legend: legend, Generated: generated}
	instructor := chartPage{Title: "教师课表", Legend: legend, Generated: generated}
	roomConflicts := ConflictValues(conflicts, DimensionLocation)
	instructorConflicts := ConflictValues(conflicts, DimensionInstructor)

	for _, day := range chartWeekdays {
		var dayRows []model.ScheduleRow
		for _, r := range rows {
			if r.Weekday == day && r.HasTime() {
				dayRows = append(dayRows, r)
			}
		}
		if len(dayRows) == 0 {
			continue
		}
		from, to := dayRange(dayRows)
		header := chartDay{Weekday: day, From: from.Format("15:04"), To: to.Format("15:04")}

		roomDay := header
		roomDay.Groups = []chartGroup{{
			Lanes: buildLanes(dayRows, from, to, colors, roomConflicts[day], laneByLocation),
		}}
		room.Days = append(room.Days, roomDay)

		instructorDay := header
		for _, college := range sortedColleges(dayRows) {
			var collegeRows []model.ScheduleRow
			for _, r := range dayRows {
				if collegeOf(r) == college {
					collegeRows = append(collegeRows, r)
				}
			}
			instructorDay.Groups = append(instructorDay.Groups, chartGroup{
				Title: college,
				Lanes: buildLanes(collegeRows, from, to, colors, instructorConflicts[day], laneByInstructor),
			})
		}
		instructor.Days = append(instructor.Days, instructorDay)
	}

	roomHTML, err := renderPage(room)
	if err != nil {
		s.logger.Error("渲染教室图失败", zap.Error(err))
		return nil, err
	}
	instructorHTML, err := renderPage(instructor)
	if err != nil {
		s.logger.Error("渲染教师图失败", zap.Error(err))
		return nil, err
	}
	return &Charts{Room: roomHTML, Instructor: instructorHTML}, nil
}

// ── 辅助函数 ──

func laneByLocation(r model.ScheduleRow) string {
	if r.Location == "" {
		return "未指定教室"
	}
	return r.Location
}

func laneByInstructor(r model.ScheduleRow) string {
	if r.Instructor == "" {
		return "未指定教师"
	}
	return r.Instructor
}

func collegeOf(r model.ScheduleRow) string {
	if r.College == "" {
		return unknownCollege
	}
	return r.College
}

func sortedColleges(rows []model.ScheduleRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		c := collegeOf(r)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func collegeColors(rows []model.ScheduleRow) (map[string]string, []legendItem) {
	colleges := sortedColleges(rows)
	colors := make(map[string]string, len(colleges))
	legend := make([]legendItem, 0, len(colleges))
	for i, c := range colleges {
		colors[c] = collegePalette[i%len(collegePalette)]
		legend = append(legend, legendItem{College: c, Style: template.CSS("background:" + colors[c])})
	}
	return colors, legend
}

func dayRange(rows []model.ScheduleRow) (time.Time, time.Time) {
	from, to := *rows[0].Sts, *rows[0].Ets
	for _, r := range rows[1:] {
		if r.Sts.Before(from) {
			from = *r.Sts
		}
		if r.Ets.After(to) {
			to = *r.Ets
		}
	}
	return from, to
}

func buildLanes(rows []model.ScheduleRow, from, to time.Time, colors map[string]string,
	conflicted map[string]bool, laneOf func(model.ScheduleRow) string) []chartLane {
	span := to.Sub(from).Minutes()
	index := make(map[string]int)
	var lanes []chartLane

	for _, r := range rows {
		name := laneOf(r)
		i, ok := index[name]
		if !ok {
			i = len(lanes)
			index[name] = i
			lanes = append(lanes, chartLane{Name: name, Conflict: conflicted[name]})
		}
		left := r.Sts.Sub(from).Minutes() / span * 100
		width := r.Ets.Sub(*r.Sts).Minutes() / span * 100
		lanes[i].Bars = append(lanes[i].Bars, chartBar{
			Label: r.CID,
			Tooltip: fmt.Sprintf("%s %s\n%s-%s\n%s / %s", r.CID, r.CourseTitle,
				r.StartTime, r.EndTime, r.Instructor, r.Location),
			Style: template.CSS(fmt.Sprintf("left:%.2f%%;width:%.2f%%;background:%s",
				left, width, colors[collegeOf(r)])),
		})
	}

	sort.SliceStable(lanes, func(i, j int) bool { return lanes[i].Name < lanes[j].Name })
	return lanes
}

func renderPage(page chartPage) ([]byte, error) {
	var buf bytes.Buffer
	if err := chartTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("渲染图表失败: %w", err)
	}
	return buf.Bytes(), nil
}

var chartTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:16px;color:#222}
h2{margin:24px 0 4px}
.range{color:#777;font-size:12px}
.group{margin:8px 0 4px;font-weight:bold}
.lane{display:flex;align-items:center;border-bottom:1px solid #eee;height:26px}
.lane.conflict{background:#fde2e2}
.name{width:180px;font-size:12px;overflow:hidden;white-space:nowrap;text-overflow:ellipsis}
.track{position:relative;flex:1;height:20px}
.bar{position:absolute;top:2px;height:16px;border-radius:3px;color:#fff;font-size:10px;overflow:hidden;white-space:nowrap;opacity:.85}
.legend span{display:inline-block;margin-right:12px;font-size:12px}
.legend i{display:inline-block;width:10px;height:10px;margin-right:4px}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="legend">{{range .Legend}}<span><i style="{{.Style}}"></i>{{.College}}</span>{{end}}</div>
{{range .Days}}
<h2>{{.Weekday}}</h2>
<div class="range">{{.From}} - {{.To}}</div>
{{range .Groups}}{{if .Title}}<div class="group">{{.Title}}</div>{{end}}
{{range .Lanes}}<div class="lane{{if .Conflict}} conflict{{end}}"><div class="name" title="{{.Name}}">{{.Name}}</div><div class="track">{{range .Bars}}<div class="bar" style="{{.Style}}" title="{{.Tooltip}}">{{.Label}}</div>{{end}}</div></div>
{{end}}{{end}}{{else}}
<p>没有可绘制的课程。</p>
{{end}}
<p class="range">生成时间 {{.Generated}}</p>
</body>
</html>
`))
