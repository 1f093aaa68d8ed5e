// Package config 汇总命令行参数；FOLIO_ROOT 与 FOLIO_OUT 是仅有的环境变量配置。
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Config struct {
	// Manifest 为书籍清单路径
	Manifest string
	// Root 为内容与图片的根目录，为空时取清单所在目录
	Root string
	Out  string

	// Preview 非空时额外输出前几页的 PNG 联系表
	Preview string
	// Debug 非空时输出显示列表 JSON
	Debug string

	Verbose bool
}

// Load 解析命令行参数，环境变量只作为对应参数的默认值。
func Load(args []string, stderr io.Writer) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("folio", flag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}
	fs.StringVar(&cfg.Manifest, "manifest", "book.folio", "书籍清单路径")
	fs.StringVar(&cfg.Root, "root", envOr("FOLIO_ROOT", ""), "内容文件根目录（默认清单所在目录）")
	fs.StringVar(&cfg.Out, "out", envOr("FOLIO_OUT", "output/book.pdf"), "PDF 输出路径")
	fs.StringVar(&cfg.Preview, "preview", "", "PNG 预览输出路径")
	fs.StringVar(&cfg.Debug, "debug", "", "显示列表调试 JSON 输出路径")
	fs.BoolVar(&cfg.Verbose, "v", false, "输出调试日志")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("多余的参数: %v", fs.Args())
	}
	if cfg.Root == "" {
		cfg.Root = filepath.Dir(cfg.Manifest)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Manifest == "" {
		return fmt.Errorf("-manifest 不能为空")
	}
	if c.Out == "" {
		return fmt.Errorf("-out 不能为空")
	}
	if c.Preview != "" && filepath.Clean(c.Preview) == filepath.Clean(c.Out) {
		return fmt.Errorf("-preview 与 -out 不能是同一个文件")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
