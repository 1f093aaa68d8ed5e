package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/folio/assets"
	"github.com/ByLCY/folio/compose"
	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/manifest"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	rasterrenderer "github.com/ByLCY/folio/renderer/raster"
	"github.com/ByLCY/folio/style"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, log); err != nil {
		log.Error("生成 PDF 失败", "err", err)
		os.Exit(1)
	}
	log.Info("已生成 PDF", "out", cfg.Out)
}

// run 串联清单解析、组版、分页与渲染。
func run(cfg config.Config, log *slog.Logger) error {
	file, err := os.Open(cfg.Manifest)
	if err != nil {
		return fmt.Errorf("无法打开清单文件 %s: %w", cfg.Manifest, err)
	}
	book, err := manifest.Parse(cfg.Manifest, file, log)
	file.Close()
	if err != nil {
		return fmt.Errorf("解析清单失败: %w", err)
	}

	store := assets.NewStore(cfg.Root, log)
	overrides := loadFonts(store, book.Fonts, log)
	pdf := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: overrides, Logger: log})

	doc, err := compose.NewComposer(style.Default(), pdf, log).Book(book, store)
	if err != nil {
		return fmt.Errorf("组版失败: %w", err)
	}
	result, err := layout.Paginate(doc, layout.Options{Logger: log})
	if err != nil {
		return fmt.Errorf("分页失败: %w", err)
	}
	log.Debug("分页完成", "pages", len(result.Pages), "images", len(result.Images))

	// 先在内存中生成全部产物，再统一落盘：渲染失败时不会留下任何文件。
	data, err := pdf.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	outputs := []output{{path: cfg.Out, data: data, what: "PDF"}}

	if cfg.Preview != "" {
		preview := rasterrenderer.NewRenderer(rasterrenderer.Options{Fonts: overrides, Logger: log})
		png, err := preview.Render(result)
		if err != nil {
			return fmt.Errorf("渲染预览失败: %w", err)
		}
		outputs = append(outputs, output{path: cfg.Preview, data: png, what: "预览"})
	}

	if cfg.Debug != "" {
		var buf bytes.Buffer
		if err := layout.EncodeDebugJSON(&buf, result); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
		outputs = append(outputs, output{path: cfg.Debug, data: buf.Bytes(), what: "调试 JSON"})
	}

	return writeAll(outputs)
}

// loadFonts 读取清单声明的字体文件；读不到的记录告警，继续使用内置字体。
func loadFonts(store *assets.Store, paths map[string]string, log *slog.Logger) map[string][]byte {
	out := make(map[string][]byte, len(paths))
	for key, rel := range paths {
		data, err := store.Read(rel)
		if err != nil {
			log.Warn("字体文件不可用，使用内置字体", "key", key, "path", rel, "err", err)
			continue
		}
		out[key] = data
	}
	return out
}

type output struct {
	path string
	data []byte
	what string
}

// writeAll 依次原子写入各个产物；任一失败时删除本次已写入的文件。
func writeAll(outputs []output) error {
	for i, o := range outputs {
		if err := writeAtomic(o.path, o.data); err != nil {
			for _, done := range outputs[:i] {
				os.Remove(done.path)
			}
			return fmt.Errorf("写入%s文件失败: %w", o.what, err)
		}
	}
	return nil
}

// writeAtomic 先写入同目录的临时文件再改名，失败时不留下半截文件。
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
