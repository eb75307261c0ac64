package public

import "github.com/fitmarket-next/internal/provider"

// Handler 用户侧接口处理器入口
// 说明：该处理器仅用于教练与客户侧 API。
type Handler struct {
	*provider.Container
}

// New 创建用户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
