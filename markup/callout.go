package markup

import (
	"strings"
	"unicode"
)

// 提示框分类分两条路径：
//   1. 显式标记：开头分隔行写明子类型，例如 "=== warning Before You Begin"；
//   2. 兼容路径：旧文档没有标记（或使用 ═/─ 画线），按关键字表尽力猜测。
// 两条路径互不混用：只要显式标记可识别，就不会再查关键字表。

var subtypeTags = map[string]Subtype{
	"info":        SubtypeInfo,
	"note":        SubtypeInfo,
	"takeaway":    SubtypeTakeaway,
	"key":         SubtypeTakeaway,
	"success":     SubtypeSuccess,
	"quickwin":    SubtypeSuccess,
	"quick-win":   SubtypeSuccess,
	"warning":     SubtypeWarning,
	"important":   SubtypeWarning,
	"log":         SubtypeLog,
	"reference":   SubtypeReference,
	"ref":         SubtypeReference,
	"nugget":      SubtypeNugget,
	"gold":        SubtypeNugget,
	"observation": SubtypeObservation,
	"archivist":   SubtypeObservation,
}

// ParseSubtype 识别显式子类型标记（大小写不敏感）。
func ParseSubtype(tag string) (Subtype, bool) {
	st, ok := subtypeTags[strings.ToLower(strings.TrimSpace(tag))]
	return st, ok
}

// legacyKeywords 是兼容路径的有序关键字表：取第一个命中项。
// 每项的 markers 需要全部出现才算命中。
var legacyKeywords = []struct {
	markers []string
	subtype Subtype
}{
	{[]string{"GOLD NUGGET"}, SubtypeNugget},
	{[]string{"KEY TAKEAWAY"}, SubtypeTakeaway},
	{[]string{"QUICK WIN"}, SubtypeSuccess},
	{[]string{"WARNING"}, SubtypeWarning},
	{[]string{"IMPORTANT"}, SubtypeWarning},
	{[]string{"BEFORE YOU"}, SubtypeWarning},
	{[]string{"⚠"}, SubtypeWarning},
	{[]string{"ARCHIVIST OBSERVES"}, SubtypeObservation},
	{[]string{"ARCHAEOLOGY", "SUBJECT"}, SubtypeLog},
	{[]string{"EXECUTION LOG"}, SubtypeLog},
	{[]string{"COPY TO PHONE"}, SubtypeReference},
	{[]string{"QUICK REFERENCE"}, SubtypeReference},
	{[]string{"NOTE"}, SubtypeInfo},
}

// titleMarkers 出现在正文首行时，该行被当作标题。
var titleMarkers = []string{"\U0001F48E", "\U0001F511", "⚡", "⚠", "\U0001F4DC"}

var titleKeywords = []string{"GOLD NUGGET", "KEY TAKEAWAY", "QUICK WIN", "WARNING", "IMPORTANT", "BEFORE YOU", "ARCHIVIST OBSERVES"}

// legacySubtype 按关键字表扫描标题行与正文，未命中返回 false。
func legacySubtype(header, body string) (Subtype, bool) {
	upper := strings.ToUpper(header + " " + body)
	for _, kw := range legacyKeywords {
		hit := true
		for _, m := range kw.markers {
			if !strings.Contains(upper, m) {
				hit = false
				break
			}
		}
		if hit {
			return kw.subtype, true
		}
	}
	return SubtypeInfo, false
}

// legacyTitle 检查第一个非空行是否是标题行；返回标题与正文起始下标。
func legacyTitle(lines []string) (string, int) {
	for idx, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if !isTitleLine(s) {
			return "", 0
		}
		return trimMarkers(s), idx + 1
	}
	return "", 0
}

func isTitleLine(s string) bool {
	upper := strings.ToUpper(s)
	for _, k := range titleKeywords {
		if strings.Contains(upper, k) {
			return true
		}
	}
	for _, m := range titleMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func trimMarkers(s string) string {
	isMarker := func(r rune) bool {
		if unicode.IsSpace(r) || r == '*' || r == '\uFE0F' {
			return true
		}
		for _, m := range titleMarkers {
			if strings.ContainsRune(m, r) {
				return true
			}
		}
		return false
	}
	return strings.TrimFunc(s, isMarker)
}

// isBoxDelimiter 判断是否为提示框分隔行：以 "===" 开头，或包含画线字符 ═/─。
func isBoxDelimiter(s string) bool {
	return strings.HasPrefix(s, "===") || strings.ContainsRune(s, '═') || strings.ContainsRune(s, '─')
}

// delimiterLabel 去掉分隔符本身，返回其中携带的文字。
func delimiterLabel(s string) (label string, legacy bool) {
	if strings.HasPrefix(s, "===") {
		return strings.TrimSpace(strings.TrimLeft(s, "=")), false
	}
	strip := func(r rune) rune {
		if r == '═' || r == '─' {
			return ' '
		}
		return r
	}
	return strings.Join(strings.Fields(strings.Map(strip, s)), " "), true
}

// classification 记录提示框子类型的来源。
type classification int

const (
	classTagged classification = iota
	classKeyword
	classDefault
)

// classifyBox 根据开头分隔行和正文确定子类型与标题，返回正文起始行下标。
func classifyBox(opening string, body []string) (st Subtype, title string, start int, how classification) {
	label, legacy := delimiterLabel(opening)
	if !legacy && label != "" {
		tag, rest, _ := strings.Cut(label, " ")
		if st, ok := ParseSubtype(tag); ok {
			return st, strings.TrimSpace(rest), 0, classTagged
		}
	}
	st, matched := legacySubtype(label, strings.Join(body, "\n"))
	title, start = legacyTitle(body)
	if !matched {
		return st, title, start, classDefault
	}
	return st, title, start, classKeyword
}
