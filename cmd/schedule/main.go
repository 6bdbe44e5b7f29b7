package main

import (
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/catalog"
	"github.com/maliky/schedule-checker-app/internal/service"
	applogger "github.com/maliky/schedule-checker-app/pkg/logger"
)

// app 命令间共享的配置与依赖，在 PersistentPreRunE 中初始化
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
	svc    *service.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "schedule",
		Short:         "课表规范化与冲突检查",
		Long:          "读取学期课表工作簿，规范化手填的上课日与时间，导出处理后的工作簿、甘特图与日历，并报告异常与冲突。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "配置文件路径（缺省查找 ./config/config.yaml）")
	root.PersistentFlags().StringVarP(&a.logLevel, "log-level", "l", "", "日志级别 debug|info|warn|error（覆盖配置）")

	root.AddCommand(newProcessCmd(a), newExamCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	// 命令行输出给人看，日志统一走控制台格式
	cfg.Log.Format = "console"

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if errors.Is(err, catalog.ErrCatalogNotFound) {
		logger.Warn("静态查找表不存在，学院映射为空", zap.String("path", cfg.Catalog.Path))
		cat = catalog.Empty()
	} else if err != nil {
		return err
	}

	// 命令行只生成文件，不写产物仓库
	svc, err := service.NewService(cfg, nil, cat, logger)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.svc = cfg, logger, svc
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
