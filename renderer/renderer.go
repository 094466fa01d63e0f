package renderer

import "github.com/ByLCY/datacards/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF 或图像。
// 实现是一次渲染会话：字体在打开时加载，Close 后不可再用。
type Renderer interface {
	// Render 返回多页 PDF 的字节数据。
	Render(result *layout.Result) ([]byte, error)
	// RenderImage 将单个页面栅格化为 PNG。
	RenderImage(page layout.Page) ([]byte, error)
	Close() error
}
