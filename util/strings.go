package util

import (
	"strings"
	"unicode"
)

// SanitizeName replaces every run of non-alphanumeric characters in the given name with a single underscore
//
// e.g. "github.com/valyala/fastjson" => "github_com_valyala_fastjson"
func SanitizeName(name string) string {
	var builder strings.Builder
	builder.Grow(len(name))
	pendingSeparator := false
	for _, c := range name {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			if pendingSeparator {
				builder.WriteByte('_')
				pendingSeparator = false
			}
			builder.WriteRune(c)
		} else {
			pendingSeparator = true
		}
	}
	if pendingSeparator {
		builder.WriteByte('_')
	}
	return builder.String()
}

