package utils

import (
	"strings"
)

// ParseKVEq parses KEY=VALUE lines (config files, blkid -o export, udev props).
// Blank lines, '#' comments and lines without a key are skipped. The value is
// everything after the first '='; later keys overwrite earlier ones.
func ParseKVEq(s string) map[string]string {
	m := map[string]string{}
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		i := strings.IndexByte(ln, '=')
		if i <= 0 {
			continue
		}
		k := strings.TrimSpace(ln[:i])
		v := strings.TrimSpace(ln[i+1:])
		m[k] = v
	}
	return m
}
