package i18n

import (
	"fmt"
	"strings"

	"github.com/fitmarket-next/internal/constants"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocaleZH = constants.LocaleZhCN
	LocaleEN = constants.LocaleEnUS
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleZH

// ResolveLocale 解析请求语言。
// 优先级：query 参数 > 上下文用户偏好 > Accept-Language 头。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	if value, ok := c.Get("locale"); ok {
		if raw, ok := value.(string); ok {
			if locale := normalizeLocale(raw); locale != "" {
				return locale
			}
		}
	}
	if locale := normalizeLocale(c.GetHeader("Accept-Language")); locale != "" {
		return locale
	}
	return DefaultLocale
}

// T 按语言翻译文案，缺失时回退默认语言再回退 key 本身。
func T(locale, key string) string {
	if catalog, ok := catalogs[normalizeOrDefault(locale)]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按语言翻译并格式化文案。
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func normalizeOrDefault(locale string) string {
	if normalized := normalizeLocale(locale); normalized != "" {
		return normalized
	}
	return DefaultLocale
}

func normalizeLocale(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	// Accept-Language 可能带权重串，只看第一段
	if idx := strings.IndexAny(trimmed, ",;"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	lowered := strings.ToLower(strings.TrimSpace(trimmed))
	switch {
	case strings.HasPrefix(lowered, "zh"):
		return LocaleZH
	case strings.HasPrefix(lowered, "en"):
		return LocaleEN
	default:
		return ""
	}
}
