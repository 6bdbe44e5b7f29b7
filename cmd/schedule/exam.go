package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/internal/service"
	apperrors "github.com/maliky/schedule-checker-app/pkg/errors"
)

type examOptions struct {
	file   string
	sheets []string
	output string
	ics    string
}

func newExamCmd(a *app) *cobra.Command {
	opts := &examOptions{}
	cmd := &cobra.Command{
		Use:     "exam",
		Short:   "解析考试安排表并导出工作簿与日历",
		Example: `  schedule exam -f finals.xlsx --sheet "FINAL EXAM SCHEDULE" --ics exams.ics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExam(cmd, a, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "考试安排工作簿 (.xlsx)")
	f.StringSliceVar(&opts.sheets, "sheet", nil, "工作表名，可重复（缺省取配置 exam.sheets）")
	f.StringVarP(&opts.output, "output", "o", service.ProcessedExamFile, "处理后工作簿输出路径")
	f.StringVar(&opts.ics, "ics", "", "日历输出路径（为空不导出）")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runExam(cmd *cobra.Command, a *app, opts *examOptions) error {
	if err := apperrors.CheckWorkbookName(opts.file); err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}
	in, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("打开考试安排表失败: %w", err)
	}
	defer in.Close()

	out, err := a.svc.Exam.Run(in, opts.sheets)
	if err != nil {
		return err
	}

	var written []string
	if len(out.Records) > 0 {
		buf, _, err := a.svc.Export.ExportExams(out.Records)
		if err != nil {
			return err
		}
		if err := writeFile(opts.output, buf.Bytes()); err != nil {
			return err
		}
		written = append(written, opts.output)
	}
	if opts.ics != "" {
		data, err := a.svc.Calendar.ExportExams(out.Records)
		if err != nil {
			return err
		}
		if err := writeFile(opts.ics, data); err != nil {
			return err
		}
		written = append(written, opts.ics)
	}
	a.logger.Info("考试安排处理完成", zap.String("run_id", out.RunID), zap.Int("records", len(out.Records)))

	w := cmd.OutOrStdout()
	printExams(w, out.Records)
	printAnomalies(w, out.Anomalies)
	printWritten(w, written)
	return nil
}
