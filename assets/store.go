// Package assets 按输入根目录读取内容文件与图片。缺失的资源只记录告警，构建继续。
package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/folio/layout"
)

// Store 从 Root 下读取资源；同一图片只解码一次。
type Store struct {
	Root string

	log    *slog.Logger
	mu     sync.Mutex
	images map[string]layout.ImageRef
}

// NewStore 创建资源仓库；log 为 nil 时使用 slog.Default()。
func NewStore(root string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{Root: root, log: log, images: map[string]layout.ImageRef{}}
}

// Resolve 返回 rel 在根目录下的路径；绝对路径原样返回。
// 拒绝通过 ".." 跳出根目录的相对路径。
func (s *Store) Resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("资源路径为空")
	}
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel), nil
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("资源路径 %s 超出输入根目录", rel)
	}
	return filepath.Join(s.Root, clean), nil
}

// Read 读取原始字节。
func (s *Store) Read(rel string) ([]byte, error) {
	path, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取资源 %s 失败: %w", rel, err)
	}
	return data, nil
}

// Text 读取内容文件；不存在或不可读时记录告警并返回 ok=false。
func (s *Store) Text(rel string) (string, bool) {
	data, err := s.Read(rel)
	if err != nil {
		s.log.Warn("缺少内容文件", "path", rel, "err", err)
		return "", false
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), true
}

// Image 读取并识别图片尺寸，支持 PNG、JPEG、GIF、BMP、TIFF 与 WebP。
func (s *Store) Image(rel string) (layout.ImageRef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.images[rel]; ok {
		return ref, true
	}
	data, err := s.Read(rel)
	if err != nil {
		s.log.Warn("缺少图片", "path", rel, "err", err)
		return layout.ImageRef{}, false
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		s.log.Warn("无法识别的图片", "path", rel, "err", err)
		return layout.ImageRef{}, false
	}
	ref := layout.ImageRef{
		Key:         filepath.ToSlash(rel),
		Data:        data,
		PixelWidth:  cfg.Width,
		PixelHeight: cfg.Height,
	}
	s.log.Debug("已加载图片", "path", rel, "format", format, "width", cfg.Width, "height", cfg.Height)
	s.images[rel] = ref
	return ref, true
}
