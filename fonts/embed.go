// Package fonts 提供内置字体：Go 字体族的无衬线与等宽两套字形。
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 字体族名称，与 layout.FamilySans / layout.FamilyMono 一致。
const (
	Sans = "sans"
	Mono = "mono"
)

var builtin = map[string][]byte{
	Key(Sans, false, false): goregular.TTF,
	Key(Sans, true, false):  gobold.TTF,
	Key(Sans, false, true):  goitalic.TTF,
	Key(Sans, true, true):   gobolditalic.TTF,
	Key(Mono, false, false): gomono.TTF,
	Key(Mono, true, false):  gomonobold.TTF,
	Key(Mono, false, true):  gomonoitalic.TTF,
	Key(Mono, true, true):   gomonobolditalic.TTF,
}

// Key 返回字形的查找键，例如 "sans"、"sans-bold"、"mono-bolditalic"。
func Key(family string, bold, italic bool) string {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		family = Sans
	}
	switch {
	case bold && italic:
		return family + "-bolditalic"
	case bold:
		return family + "-bold"
	case italic:
		return family + "-italic"
	default:
		return family
	}
}

// ParseKey 是 Key 的逆操作。
func ParseKey(key string) (family string, bold, italic bool, err error) {
	family, variant, _ := strings.Cut(strings.ToLower(strings.TrimSpace(key)), "-")
	if family != Sans && family != Mono {
		return "", false, false, fmt.Errorf("未知字体族 %q", key)
	}
	switch variant {
	case "":
	case "bold":
		bold = true
	case "italic":
		italic = true
	case "bolditalic":
		bold, italic = true, true
	default:
		return "", false, false, fmt.Errorf("未知字形 %q", key)
	}
	return family, bold, italic, nil
}

// Load 返回内置字形的 TTF 数据；未知字体族回退到无衬线。
func Load(family string, bold, italic bool) []byte {
	if data, ok := builtin[Key(family, bold, italic)]; ok {
		return data
	}
	return builtin[Key(Sans, bold, italic)]
}

// Keys 返回全部内置字形键。
func Keys() []string {
	return []string{
		Key(Sans, false, false), Key(Sans, true, false), Key(Sans, false, true), Key(Sans, true, true),
		Key(Mono, false, false), Key(Mono, true, false), Key(Mono, false, true), Key(Mono, true, true),
	}
}
