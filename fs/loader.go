package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docqa"
)

// Ensure Loader implements docqa.PageLoader at compile time.
var _ docqa.PageLoader = (*Loader)(nil)

// Loader implements docqa.PageLoader over the local file system.
//
// Markdown and text files are read as they are. HTML files are converted to
// markdown when a Converter is set and skipped otherwise.
type Loader struct {
	Converter docqa.Converter
}

// NewLoader creates a new Loader. converter may be nil.
func NewLoader(converter docqa.Converter) *Loader {
	return &Loader{Converter: converter}
}

func (l *Loader) supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".txt":
		return true
	case ".html", ".htm":
		return l.Converter != nil
	}
	return false
}

// pageFiles returns the relative paths of page files under dir in
// lexicographic order. Hidden files and directories are ignored.
func (l *Loader) pageFiles(ctx context.Context, dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, iofs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, docqa.Errorf(docqa.ENODIR, "corpus directory %q does not exist", dir)
	} else if err != nil {
		return nil, docqa.WrapError(err, docqa.EINTERNAL, "failed to stat corpus directory")
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !l.supported(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, docqa.WrapError(err, docqa.EINTERNAL, "failed to list corpus directory")
	}

	slices.Sort(paths)
	return paths, nil
}

// LoadPages reads every page file under dir.
func (l *Loader) LoadPages(ctx context.Context, dir string) (*docqa.PageSet, error) {
	set := &docqa.PageSet{}

	paths, err := l.pageFiles(ctx, dir)
	if err != nil {
		return set, err
	}

	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return set, err
		}

		page, err := l.loadPage(dir, rel)
		if err != nil {
			set.Skipped = append(set.Skipped, docqa.SkippedFile{
				Path:   rel,
				Reason: docqa.ErrorMessage(err),
			})
			continue
		}
		set.Pages = append(set.Pages, page)
	}

	return set, nil
}

func (l *Loader) loadPage(dir, rel string) (*docqa.Page, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, docqa.WrapError(err, docqa.EINVALID, "unreadable file")
	}

	page, err := ParsePage(rel, data)
	if err != nil {
		return nil, err
	}

	if ext := strings.ToLower(filepath.Ext(rel)); ext == ".html" || ext == ".htm" {
		md, err := l.Converter.Convert(page.Content)
		if err != nil {
			return nil, docqa.WrapError(err, docqa.EINVALID, "failed to convert HTML")
		}
		page.Content = strings.TrimSpace(md)
	}

	if strings.TrimSpace(page.Content) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "empty page content")
	}

	page.Hash = HashContent(page.Content)
	return page, nil
}

// Fingerprint hashes the sorted list of page files in dir together with
// their sizes and modification times.
func (l *Loader) Fingerprint(ctx context.Context, dir string) (string, error) {
	paths, err := l.pageFiles(ctx, dir)
	if err != nil {
		return "", err
	}

	h := xxhash.New()
	for _, rel := range paths {
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return "", docqa.WrapError(err, docqa.EINTERNAL, "failed to stat %q", rel)
		}
		_, _ = h.WriteString(rel)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(strconv.FormatInt(info.Size(), 10))
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10))
		_, _ = h.WriteString("\n")
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}

// ScanCorpora lists the corpus directories directly under root with the
// number of page files each holds. A missing root yields an empty list.
// State is left empty; it is owned by the corpus registry.
func (l *Loader) ScanCorpora(ctx context.Context, root string) ([]*docqa.CorpusSummary, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, iofs.ErrNotExist) {
		return []*docqa.CorpusSummary{}, nil
	} else if err != nil {
		return nil, docqa.WrapError(err, docqa.EINTERNAL, "failed to read docs root")
	}

	summaries := make([]*docqa.CorpusSummary, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || docqa.ValidateCorpusName(e.Name()) != nil || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths, err := l.pageFiles(ctx, filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &docqa.CorpusSummary{
			Name:      e.Name(),
			PageCount: len(paths),
		})
	}
	return summaries, nil
}

// HashContent returns the hex xxhash of content.
func HashContent(content string) string {
	return strconv.FormatUint(xxhash.Sum64String(content), 16)
}
