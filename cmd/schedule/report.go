package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/maliky/schedule-checker-app/internal/model"
	"github.com/maliky/schedule-checker-app/internal/service"
)

// ── 终端报告 ──

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	warnColor  = color.New(color.FgYellow)
	okColor    = color.New(color.FgGreen)
	badColor   = color.New(color.FgRed)
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func printScheduleSummary(w io.Writer, out *service.ScheduleOutcome) {
	unscheduled := 0
	for _, o := range out.Result.Offerings {
		if o.Unscheduled() {
			unscheduled++
		}
	}
	titleColor.Fprintf(w, "\n工作表 %s（批次 %s）\n", out.Sheet, out.RunID)
	table := newTable(w, []string{"课程班", "单次课", "未排时间", "异常", "冲突"})
	table.Append([]string{
		strconv.Itoa(len(out.Result.Offerings)),
		strconv.Itoa(len(out.Result.Rows)),
		strconv.Itoa(unscheduled),
		strconv.Itoa(len(out.Anomalies)),
		strconv.Itoa(len(out.Conflicts)),
	})
	table.Render()
}

// printAnomalies 先按类型汇总，再列出明细
func printAnomalies(w io.Writer, anomalies []model.Anomaly) {
	if len(anomalies) == 0 {
		okColor.Fprintln(w, "\n没有异常行")
		return
	}

	counts := make(map[model.AnomalyKind]int)
	for _, a := range anomalies {
		counts[a.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	warnColor.Fprintf(w, "\n异常 %d 条\n", len(anomalies))
	summary := newTable(w, []string{"类型", "数量"})
	for _, k := range kinds {
		summary.Append([]string{k, strconv.Itoa(counts[model.AnomalyKind(k)])})
	}
	summary.Render()

	detail := newTable(w, []string{"行", "阶段", "类型", "字段", "原值", "说明"})
	for _, a := range anomalies {
		detail.Append([]string{strconv.Itoa(a.Row), a.Stage, string(a.Kind), a.Field, a.Value, a.Message})
	}
	detail.Render()
}

func printConflicts(w io.Writer, conflicts []model.Conflict) {
	if len(conflicts) == 0 {
		okColor.Fprintln(w, "\n没有教室或教师冲突")
		return
	}
	badColor.Fprintf(w, "\n冲突 %d 处\n", len(conflicts))
	table := newTable(w, []string{"星期", "维度", "教室/教师", "类型", "课程 A", "课程 B", "重叠"})
	for _, c := range conflicts {
		table.Append([]string{
			c.Weekday,
			c.Dimension,
			c.Value,
			string(c.Kind),
			fmt.Sprintf("%s (行 %d)", c.First, c.FirstRow),
			fmt.Sprintf("%s (行 %d)", c.Second, c.SecondRow),
			c.From.Format("15:04") + "-" + c.To.Format("15:04"),
		})
	}
	table.Render()
}

func printExams(w io.Writer, records []model.ExamRecord) {
	titleColor.Fprintf(w, "\n考试 %d 场\n", len(records))
	if len(records) == 0 {
		return
	}
	table := newTable(w, []string{"cid", "学院", "日期", "星期", "时间", "地点", "监考"})
	for _, r := range records {
		date := ""
		if r.ExamDate != nil {
			date = r.ExamDate.Format("2006-01-02")
		}
		table.Append([]string{
			r.CID, r.College, date, r.Weekday,
			r.StartTime + "-" + r.EndTime,
			r.Location, r.Instructor,
		})
	}
	table.Render()
}

func printWritten(w io.Writer, files []string) {
	for _, f := range files {
		okColor.Fprintf(w, "已写入 %s\n", f)
	}
}
