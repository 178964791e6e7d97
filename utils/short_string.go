package utils

import "fmt"

// ShortenLog keeps the head and tail of a long identifier for log lines
func ShortenLog(id string) string {
	indexCut := 8
	if len(id) <= 8 {
		return id
	} else if len(id) <= 16 {
		indexCut = 4
	}
	return fmt.Sprintf("%s...%s", id[:indexCut], id[len(id)-indexCut:])
}
