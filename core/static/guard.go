package static

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolvePath joins a client-supplied path onto root and rejects results
// that leave root. The check runs on the canonical path, after "." and ".."
// have been resolved, and never touches the filesystem. root must be clean.
func resolvePath(root, requestPath string) (string, error) {
	p := requestPath
	if p != "" && (p[0] == '/' || p[0] == filepath.Separator) {
		p = p[1:]
	}

	resolved := filepath.Join(root, p)
	if resolved == root {
		return resolved, nil
	}

	base := root
	if !strings.HasSuffix(base, string(filepath.Separator)) {
		base += string(filepath.Separator)
	}
	if !strings.HasPrefix(resolved, base) {
		return "", fmt.Errorf("%w: %q", ErrTraversal, requestPath)
	}
	return resolved, nil
}

// relativeName returns name relative to root in slash form, without a
// leading slash. name must already be under root.
func relativeName(root, name string) string {
	rel, err := filepath.Rel(root, name)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
