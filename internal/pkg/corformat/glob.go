package corformat

import (
	"path"
	"strings"
)

const fileScheme = "file://"

// hasGlob reports whether p uses any glob syntax
func hasGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// isHidden reports whether any element of p is hidden. Names starting with
// '.' or '_' are reserved for checksums, markers and other job side files,
// and everything under a hidden directory is hidden too.
func isHidden(p string) bool {
	for _, name := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return true
		}
	}
	return false
}

// listingRoot returns the part of pattern the user named literally: the whole
// path when it has no glob, otherwise everything up to the directory holding
// the first glob element.
func listingRoot(pattern string) string {
	pattern = strings.TrimPrefix(pattern, fileScheme)
	i := strings.IndexAny(pattern, "*?[{")
	if i < 0 {
		return pattern
	}
	return pattern[:strings.LastIndex(pattern[:i], "/")+1]
}

// hiddenBelow reports whether p, listed from pattern, is hidden anywhere below
// the pattern's literal root. The root itself is never checked, so an input
// named _in/ is still read.
func hiddenBelow(pattern, p string) bool {
	root := listingRoot(pattern)
	name := strings.TrimPrefix(p, fileScheme)
	if !strings.HasPrefix(name, root) {
		return isHidden(path.Base(name))
	}
	return isHidden(strings.TrimPrefix(name, root))
}

// expandBraces rewrites a pattern with {a,b} alternations into the plain glob
// patterns it stands for. Unbalanced braces are left untouched.
func expandBraces(pattern string) []string {
	open := strings.IndexByte(pattern, '{')
	if open < 0 {
		return []string{pattern}
	}

	alts := make([]string, 0)
	depth := 0
	start := open + 1
	closing := -1
scan:
	for i := open; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				alts = append(alts, pattern[start:i])
				closing = i
				break scan
			}
		case ',':
			if depth == 1 {
				alts = append(alts, pattern[start:i])
				start = i + 1
			}
		}
	}
	if closing < 0 {
		return []string{pattern}
	}

	prefix, suffix := pattern[:open], pattern[closing+1:]
	expanded := make([]string, 0, len(alts))
	for _, alt := range alts {
		expanded = append(expanded, expandBraces(prefix+alt+suffix)...)
	}
	return expanded
}
