package utils

// Ellipsis 截断后追加的省略号
const Ellipsis = "..."

// TruncateRunes 按字符数截断，超出时追加省略号
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + Ellipsis
}
