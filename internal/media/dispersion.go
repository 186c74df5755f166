package media

import (
	"path"
	"strconv"
	"strings"
)

// dispersionDepth is the number of leading name characters turned into directories.
const dispersionDepth = 2

// CorrectFileName lowercases name and replaces every character outside
// [a-z0-9_.-] with an underscore.
func CorrectFileName(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '.', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// DispersionPath returns "/<c1>/<c2>" built from the first two characters of
// the corrected file name. A dot becomes an underscore so no segment is "." or "..".
// Names shorter than two characters produce a shorter path; "" yields "".
func DispersionPath(fileName string) string {
	name := CorrectFileName(fileName)
	var b strings.Builder
	for i := 0; i < dispersionDepth && i < len(name); i++ {
		c := name[i]
		if c == '.' {
			c = '_'
		}
		b.WriteByte('/')
		b.WriteByte(c)
	}
	return b.String()
}

// NewFileName returns fileName when exists reports false for it, otherwise the
// first "base_N.ext" (N >= 1) that does not exist.
func NewFileName(fileName string, exists func(name string) (bool, error)) (string, error) {
	taken, err := exists(fileName)
	if err != nil {
		return "", err
	}
	if !taken {
		return fileName, nil
	}
	ext := path.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	for i := 1; ; i++ {
		candidate := base + "_" + strconv.Itoa(i) + ext
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
