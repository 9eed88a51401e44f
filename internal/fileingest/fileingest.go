// Package fileingest discovers prompt files for batch analysis.
package fileingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultExtensions are the file types treated as one prompt each.
var DefaultExtensions = []string{".txt", ".md", ".html", ".htm"}

// FileMeta holds metadata about a discovered prompt file.
type FileMeta struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

/*
DiscoverPromptFiles recursively finds files under rootDir whose extension
(case-insensitive) is in exts, skipping hidden directories. A nil exts uses
DefaultExtensions. Results are sorted by path.
*/
func DiscoverPromptFiles(ctx context.Context, rootDir string, exts []string) ([]FileMeta, error) {
	if exts == nil {
		exts = DefaultExtensions
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}

	var files []FileMeta
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !want[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		meta, metaErr := ExtractFileMeta(path)
		if metaErr != nil {
			// Skip files we can't stat, but continue
			return nil
		}
		if meta.Size > 0 {
			files = append(files, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ExtractFileMeta extracts metadata from a given file path.
func ExtractFileMeta(path string) (FileMeta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileMeta{}, err
	}
	return FileMeta{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
