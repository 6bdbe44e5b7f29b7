package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/internal/service"
	apperrors "github.com/maliky/schedule-checker-app/pkg/errors"
)

type processOptions struct {
	file           string
	sheet          string
	output         string
	ics            string
	chartDir       string
	failOnConflict bool
}

func newProcessCmd(a *app) *cobra.Command {
	opts := &processOptions{}
	cmd := &cobra.Command{
		Use:   "process",
		Short: "规范化课表并导出工作簿、图表与日历",
		Example: `  schedule process -f spring.xlsx -s "GENERAL SCHEDULE" -o processed_schedule.xlsx
  schedule process -f spring.xlsx --ics schedule.ics --charts ./charts`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProcess(cmd, a, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "课表工作簿 (.xlsx)")
	f.StringVarP(&opts.sheet, "sheet", "s", "", "工作表名（缺省取配置 pipeline.sheet_name）")
	f.StringVarP(&opts.output, "output", "o", service.ProcessedScheduleFile, "处理后工作簿输出路径")
	f.StringVar(&opts.ics, "ics", "", "日历输出路径（为空不导出）")
	f.StringVar(&opts.chartDir, "charts", "", "甘特图输出目录（为空不导出）")
	f.BoolVar(&opts.failOnConflict, "fail-on-conflict", false, "存在冲突时以非零状态退出")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runProcess(cmd *cobra.Command, a *app, opts *processOptions) error {
	if err := apperrors.CheckWorkbookName(opts.file); err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}
	in, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("打开课表失败: %w", err)
	}
	defer in.Close()

	out, err := a.svc.Schedule.Run(in, opts.sheet)
	if err != nil {
		return err
	}
	rows := out.Result.Rows

	buf, _, err := a.svc.Export.ExportSchedule(rows, out.Anomalies, out.Conflicts)
	if err != nil {
		return err
	}
	written := []string{}
	if err := writeFile(opts.output, buf.Bytes()); err != nil {
		return err
	}
	written = append(written, opts.output)

	if opts.ics != "" {
		data, err := a.svc.Calendar.ExportMeetings(rows)
		if err != nil {
			return err
		}
		if err := writeFile(opts.ics, data); err != nil {
			return err
		}
		written = append(written, opts.ics)
	}

	if opts.chartDir != "" {
		charts, err := a.svc.Chart.Render(rows, out.Conflicts)
		if err != nil {
			return err
		}
		for name, data := range map[string][]byte{
			service.RoomChartFile:       charts.Room,
			service.InstructorChartFile: charts.Instructor,
		} {
			path := filepath.Join(opts.chartDir, name)
			if err := writeFile(path, data); err != nil {
				return err
			}
			written = append(written, path)
		}
	}
	a.logger.Info("课表处理完成", zap.String("run_id", out.RunID), zap.Strings("files", written))

	w := cmd.OutOrStdout()
	printScheduleSummary(w, out)
	printAnomalies(w, out.Anomalies)
	printConflicts(w, out.Conflicts)
	printWritten(w, written)

	if opts.failOnConflict && len(out.Conflicts) > 0 {
		return fmt.Errorf("发现 %d 处冲突", len(out.Conflicts))
	}
	return nil
}

// writeFile 写文件，必要时创建上级目录
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
