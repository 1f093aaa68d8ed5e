package renderer

import "github.com/ByLCY/folio/layout"

// Renderer 将分页后的显示列表输出为最终文件，例如 PDF 或 PNG 预览。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Typesetter 是同时提供文本测量的渲染器；测量与绘制使用同一套字体，折行才与输出一致。
type Typesetter interface {
	Renderer
	layout.Typesetter
}
