package utils

import (
	"github.com/bytedance/gopkg/lang/fastrand"
)

func Truncate(content string, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen] + "..."
}

func Truncate80(content string) string {
	return Truncate(content, 80)
}

// Pick returns a random element of items, or the zero value when empty.
func Pick[T any](items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[fastrand.Intn(len(items))]
}
