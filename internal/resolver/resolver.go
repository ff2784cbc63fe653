// Package resolver maps request paths to files below the site roots
package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-while/go-pugsite/internal/config"
)

var (
	// ErrNotFound means no root holds a servable file for the path
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden means the path tries to leave the roots
	ErrForbidden = errors.New("path escapes site root")
)

// Resolver searches the primary root, then the secondary root, then the
// secondary root again with Suffix appended. The filesystem is consulted
// on every call; nothing is cached.
type Resolver struct {
	Primary   string   // assets and nested subsites
	Secondary string   // relocated HTML documents
	Suffix    string   // appended in the last lookup step, usually ".html"
	Index     string   // document served for "/"
	Hidden    []string // base name patterns (path.Match) that are never served
}

// Resource is a resolved file
type Resource struct {
	Root        string // root directory the file was found in
	Name        string // slash separated path relative to Root
	Path        string // full filesystem path
	Info        fs.FileInfo
	ContentType string
}

// New builds a Resolver from the site configuration
func New(cfg config.SiteConfig) *Resolver {
	return &Resolver{
		Primary:   cfg.PrimaryRoot,
		Secondary: cfg.SecondaryRoot,
		Suffix:    cfg.DocSuffix,
		Index:     cfg.IndexDocument,
		Hidden:    append([]string(nil), cfg.HiddenPatterns...),
	}
}

// Resolve finds the file answering the decoded request path p. The leading
// slash is optional. A miss yields ErrNotFound, a traversal attempt
// ErrForbidden; any other error is an I/O failure.
func (r *Resolver) Resolve(p string) (*Resource, error) {
	name, err := r.clean(p)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrNotFound
	}

	candidates := []struct{ root, name string }{
		{r.Primary, name},
		{r.Secondary, name},
	}
	if r.Suffix != "" {
		candidates = append(candidates, struct{ root, name string }{r.Secondary, name + r.Suffix})
	}

	for _, c := range candidates {
		res, err := r.lookup(c.root, c.name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		return res, nil
	}
	return nil, ErrNotFound
}

// ResolveIndex returns the entry document from the secondary root
func (r *Resolver) ResolveIndex() (*Resource, error) {
	return r.lookup(r.Secondary, r.Index)
}

// clean validates p and returns it relative, slash separated and without
// empty segments.
func (r *Resolver) clean(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", ErrForbidden
	}
	if strings.Contains(p, `\`) {
		return "", ErrForbidden
	}
	p = strings.TrimPrefix(p, "/")
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", ErrForbidden
	}

	var segments []string
	for _, seg := range strings.Split(p, "/") {
		switch {
		case seg == "" || seg == ".":
			continue
		case seg == "..":
			return "", ErrForbidden
		case strings.HasPrefix(seg, "."):
			// dot files and dot directories are never part of the site
			return "", ErrNotFound
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return "", nil
	}
	if r.isHidden(segments[len(segments)-1]) {
		return "", ErrNotFound
	}
	return strings.Join(segments, "/"), nil
}

// isHidden matches base case-insensitively against the hidden patterns
func (r *Resolver) isHidden(base string) bool {
	base = strings.ToLower(base)
	for _, pattern := range r.Hidden {
		if ok, err := path.Match(strings.ToLower(pattern), base); err == nil && ok {
			return true
		}
	}
	return false
}

// lookup stats root/name and returns it if it is a regular file
func (r *Resolver) lookup(root, name string) (*Resource, error) {
	if root == "" || name == "" {
		return nil, ErrNotFound
	}
	full := filepath.Join(root, filepath.FromSlash(name))

	info, err := os.Stat(full)
	if err != nil {
		if isMiss(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", full, err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}

	return &Resource{
		Root:        root,
		Name:        name,
		Path:        full,
		Info:        info,
		ContentType: ContentType(full),
	}, nil
}

// isMiss reports stat errors that mean the name cannot exist on disk
func isMiss(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.ENAMETOOLONG) ||
		errors.Is(err, syscall.ELOOP)
}
