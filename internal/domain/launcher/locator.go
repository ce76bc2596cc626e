package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/PuerkitoBio/goquery"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// DefaultIndexCandidates are searched when an application declares none
var DefaultIndexCandidates = []string{
	"index.html",
	"dist/index.html",
	"build/index.html",
	"public/index.html",
	"web/index.html",
}

const (
	// MaxLinkHops bounds symbolic link resolution per candidate
	MaxLinkHops = 32
	// MaxIndexSize is the most of an index document that gets inspected
	MaxIndexSize = 4 * 1024 * 1024
)

// IndexDocument is a located and validated entry document
type IndexDocument struct {
	Path    string `json:"path"`
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Charset string `json:"charset,omitempty"`
	MIME    string `json:"mime"`
}

// Locator finds the entry document of local-content applications
type Locator struct {
	maxHops int
}

// NewLocator creates a locator with the default link hop limit
func NewLocator() *Locator {
	return &Locator{maxHops: MaxLinkHops}
}

// Locate searches contentDir for the first usable candidate. Failures are
// always *LaunchError values from the local content taxonomy.
func (l *Locator) Locate(contentDir string, candidates []string) (*IndexDocument, error) {
	doc, lerr := l.locate(contentDir, candidates)
	if lerr != nil {
		return nil, lerr
	}
	return doc, nil
}

func (l *Locator) locate(contentDir string, candidates []string) (*IndexDocument, *LaunchError) {
	if len(candidates) == 0 {
		candidates = DefaultIndexCandidates
	}

	var searched []string
	accessErrors := make(map[string]string)

	for _, candidate := range candidates {
		paths, err := expandCandidate(contentDir, candidate)
		if err != nil {
			accessErrors[filepath.Join(contentDir, candidate)] = err.Error()
			continue
		}

		for _, path := range paths {
			searched = append(searched, path)

			resolved, lerr := l.resolveLinks(path)
			if lerr != nil {
				return nil, lerr
			}

			info, err := os.Stat(resolved)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					accessErrors[path] = err.Error()
				}
				continue
			}
			if info.IsDir() {
				continue
			}

			return inspectIndex(path, resolved)
		}
	}

	return nil, ErrIndexNotFound(contentDir, searched, accessErrors)
}

// expandCandidate turns a candidate into concrete paths. Glob candidates
// expand to their sorted matches.
func expandCandidate(contentDir, candidate string) ([]string, error) {
	if !strings.ContainsAny(candidate, "*?[{") {
		return []string{filepath.Join(contentDir, filepath.FromSlash(candidate))}, nil
	}

	if !doublestar.ValidatePattern(candidate) {
		return nil, fmt.Errorf("invalid candidate pattern %q: %w", candidate, doublestar.ErrBadPattern)
	}

	matches, err := doublestar.Glob(os.DirFS(contentDir), candidate)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(contentDir, filepath.FromSlash(m)))
	}
	return paths, nil
}

// resolveLinks follows symbolic links on the final path element one hop
// at a time. A missing, non-link path is returned unchanged.
func (l *Locator) resolveLinks(path string) (string, *LaunchError) {
	current := path
	visited := make(map[string]struct{})

	for hops := 0; ; hops++ {
		info, err := os.Lstat(current)
		if err != nil {
			switch {
			case errors.Is(err, syscall.ELOOP):
				return "", ErrSymbolicLink(LinkExcessiveRecursion, current, err)
			case hops > 0 && errors.Is(err, fs.ErrNotExist):
				return "", ErrSymbolicLink(LinkBroken, path, err)
			}
			return current, nil
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return current, nil
		}

		if hops >= l.maxHops {
			return "", ErrSymbolicLink(LinkExcessiveRecursion, path,
				fmt.Errorf("more than %d links followed", l.maxHops))
		}
		if _, seen := visited[current]; seen {
			return "", ErrSymbolicLink(LinkCircularReference, current,
				fmt.Errorf("link chain revisits %s", current))
		}
		visited[current] = struct{}{}

		target, err := os.Readlink(current)
		if err != nil {
			return "", ErrSymbolicLink(LinkUnknown, current, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = filepath.Clean(target)
	}
}

// inspectIndex reads and validates a located document
func inspectIndex(path, resolved string) (*IndexDocument, *LaunchError) {
	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, ErrFileAccessDenied(path, err)
		}
		return nil, ErrFileAccessDenied(path, err).WithContext("reason", "open failed")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxIndexSize))
	if err != nil {
		return nil, ErrFileAccessDenied(path, err).WithContext("reason", "read failed")
	}

	mt := mimetype.Detect(data)
	if !mt.Is("text/html") {
		return nil, ErrInvalidFileContent(path, fmt.Sprintf("detected %s, expected text/html", mt.String()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidFileContent(path, "document could not be parsed").WithCause(err)
	}
	body := doc.Find("body")
	if body.Children().Length() == 0 && strings.TrimSpace(body.Text()) == "" {
		return nil, ErrInvalidFileContent(path, "document body is empty")
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = resolved
	}

	return &IndexDocument{
		Path:    path,
		URL:     fileURL(abs),
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Charset: detectCharset(data),
		MIME:    mt.String(),
	}, nil
}

func detectCharset(data []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(data)
	if err != nil {
		return ""
	}
	return result.Charset
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
