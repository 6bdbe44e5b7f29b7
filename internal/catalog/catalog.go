package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrCatalogNotFound 静态表文件不存在
var ErrCatalogNotFound = errors.New("静态查找表文件不存在")

// Key 学院查找键：(不含班号的课程标识, 课程名称, 年级)
type Key struct {
	CID   string
	Title string
	Year  string
}

// Catalog 静态查找表：课程代码别名 + 学院归属
//
// 进程启动时加载一次，作为参数显式传入流水线，不作为全局变量。
type Catalog struct {
	aliases  map[string]string
	colleges map[Key]string
}

type fileFormat struct {
	CourseCodeAliases map[string]string `yaml:"course_code_aliases"`
	Colleges          []struct {
		CID     string `yaml:"cid"`
		Title   string `yaml:"title"`
		Year    string `yaml:"year"`
		College string `yaml:"college"`
	} `yaml:"colleges"`
}

// New 由内存数据构建查找表
func New(aliases map[string]string, colleges map[Key]string) *Catalog {
	c := &Catalog{
		aliases:  make(map[string]string, len(aliases)),
		colleges: make(map[Key]string, len(colleges)),
	}
	for k, v := range aliases {
		c.aliases[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	for k, v := range colleges {
		c.colleges[k] = v
	}
	return c
}

// Empty 空查找表：所有代码原样保留，所有学院查找均未命中
func Empty() *Catalog {
	return New(nil, nil)
}

// Load 从 YAML 文件加载查找表
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return nil, fmt.Errorf("打开静态查找表失败: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse 解析 YAML 格式的查找表
func Parse(r io.Reader) (*Catalog, error) {
	var ff fileFormat
	if err := yaml.NewDecoder(r).Decode(&ff); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("解析静态查找表失败: %w", err)
	}

	colleges := make(map[Key]string, len(ff.Colleges))
	for i, entry := range ff.Colleges {
		if entry.CID == "" || entry.College == "" {
			return nil, fmt.Errorf("静态查找表第 %d 条学院映射缺少 cid 或 college", i+1)
		}
		colleges[Key{CID: entry.CID, Title: entry.Title, Year: entry.Year}] = entry.College
	}
	return New(ff.CourseCodeAliases, colleges), nil
}

// Alias 返回课程代码的标准写法，未登记时原样返回
func (c *Catalog) Alias(code string) string {
	if c == nil {
		return code
	}
	if canonical, ok := c.aliases[code]; ok {
		return canonical
	}
	return code
}

// College 按 (cid, title, year) 查找学院
func (c *Catalog) College(k Key) (string, bool) {
	if c == nil {
		return "", false
	}
	college, ok := c.colleges[k]
	return college, ok
}

// Len 学院映射条数
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.colleges)
}
