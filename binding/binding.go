// Package binding 实现页眉页脚文本中的 ${name} 占位符替换。
//
// 页眉页脚在每一页装饰时都会求值，因此文本先编译为 Template，之后只做拼接。
package binding

import (
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// Vars 是占位符可引用的变量，例如 page 与 title。
type Vars map[string]string

// Template 是编译后的文本：字面量与占位符交替排列。
type Template struct {
	parts []part
}

type part struct {
	literal  string
	name     string
	fallback string
	// hasFallback 区分 ${name|} 与 ${name}：前者缺值时输出空串。
	hasFallback bool
	// raw 是占位符原文，变量缺失且无默认值时原样输出。
	raw string
}

// Compile 解析文本中的占位符。名称为空的占位符按字面量处理。
func Compile(text string) Template {
	var t Template
	last := 0
	for _, loc := range exprPattern.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		name, fallback, ok := strings.Cut(text[loc[2]:loc[3]], "|")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if loc[0] > last {
			t.parts = append(t.parts, part{literal: text[last:loc[0]]})
		}
		t.parts = append(t.parts, part{name: name, fallback: strings.TrimSpace(fallback), hasFallback: ok, raw: raw})
		last = loc[1]
	}
	if last < len(text) {
		t.parts = append(t.parts, part{literal: text[last:]})
	}
	return t
}

// Execute 代入变量。变量不存在时使用默认值；没有默认值则保留原占位符。
func (t Template) Execute(vars Vars) string {
	var b strings.Builder
	for _, p := range t.parts {
		if p.name == "" {
			b.WriteString(p.literal)
			continue
		}
		if v, ok := vars[p.name]; ok {
			b.WriteString(v)
		} else if p.hasFallback {
			b.WriteString(p.fallback)
		} else {
			b.WriteString(p.raw)
		}
	}
	return b.String()
}

// Empty 报告模板是否不会产生任何输出。
func (t Template) Empty() bool { return len(t.parts) == 0 }

// Names 按出现顺序返回模板引用的变量名（去重）。
func (t Template) Names() []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range t.parts {
		if p.name == "" || seen[p.name] {
			continue
		}
		seen[p.name] = true
		out = append(out, p.name)
	}
	return out
}

// Interpolate 编译并立即求值，适合只用一次的文本。
func Interpolate(text string, vars Vars) string {
	return Compile(text).Execute(vars)
}
