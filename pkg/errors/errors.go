package errors

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFile 上传或命令行指定的文件不是 Excel 工作簿
	ErrUnsupportedFile = errors.New("仅支持 .xlsx / .xls 文件")
	// ErrEmptyFile 文件为空
	ErrEmptyFile = errors.New("文件内容为空")
)

// CheckWorkbookName 校验工作簿扩展名（不区分大小写）
func CheckWorkbookName(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return nil
	default:
		return ErrUnsupportedFile
	}
}
