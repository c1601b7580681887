package static

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// WalkSkip records an entry the walk could not enumerate and why.
type WalkSkip struct {
	Path string
	Err  error
}

// walkFiles lists every regular file under fsys.Root() using an explicit
// stack. Unreadable directories and entries are reported in skips and left
// out; only context cancellation stops the walk early. Symlinks to regular
// files are included, symlinked directories are not descended into.
func walkFiles(ctx context.Context, fsys FileSystem) (files []string, skips []WalkSkip, err error) {
	stack := []string{fsys.Root()}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return files, skips, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := fsys.ReadDir(ctx, dir)
		if err != nil {
			skips = append(skips, WalkSkip{Path: dir, Err: err})
			continue
		}

		for _, e := range entries {
			name := filepath.Join(dir, e.Name())
			mode := e.Type()

			switch {
			case e.IsDir():
				stack = append(stack, name)
			case mode.IsRegular():
				files = append(files, name)
			case mode&fs.ModeSymlink != 0:
				info, err := fsys.Stat(ctx, name)
				switch {
				case err != nil:
					skips = append(skips, WalkSkip{Path: name, Err: err})
				case info.Mode().IsRegular():
					files = append(files, name)
				default:
					skips = append(skips, WalkSkip{Path: name, Err: fmt.Errorf("%w: symlink to %s", ErrNotRegularFile, info.Mode().Type())})
				}
			default:
				skips = append(skips, WalkSkip{Path: name, Err: fmt.Errorf("%w: %s", ErrNotRegularFile, mode)})
			}
		}
	}

	sort.Strings(files)
	return files, skips, nil
}
