package server

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// TransferMode classifies how a resource's body is produced and written.
type TransferMode int

const (
	// ModeText resources are rendered line by line with token substitution.
	ModeText TransferMode = iota
	// ModeBinary resources are streamed from disk untouched.
	ModeBinary
	// ModeSynthetic replaces the resource with the built-in default page.
	ModeSynthetic
)

// Resource is the outcome of resolving one request target against the
// document root. Recomputed fresh per request, never cached.
type Resource struct {
	Path     string
	Exists   bool
	MimeType string
	Mode     TransferMode
}

// Resolver maps raw request targets onto the document root.
type Resolver struct {
	Root string
	// RestrictTraversal rejects targets whose cleaned path escapes the
	// document root. Off by default: the permissive behavior (".." segments
	// resolve wherever they land) is the compatible one, and tests pin it.
	RestrictTraversal bool
}

// Resolve anchors target under the document root and checks that it names an
// existing regular file. The target string is used as sent; no cleaning
// happens unless RestrictTraversal is on.
func (r *Resolver) Resolve(target string) Resource {
	res := Resource{Mode: classify(target)}

	p := target
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	res.Path = r.Root + p

	if r.RestrictTraversal {
		clean := filepath.Clean(res.Path)
		rel, err := filepath.Rel(filepath.Clean(r.Root), clean)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			return res
		}
		res.Path = clean
	}

	info, err := os.Stat(res.Path)
	if err != nil || !info.Mode().IsRegular() {
		return res
	}
	res.Exists = true

	if res.Mode != ModeSynthetic {
		res.MimeType = probeMime(res.Path)
	}
	return res
}

// classify groups a target by filename suffix. Unrecognized suffixes get the
// synthetic default page regardless of whether a file exists.
func classify(target string) TransferMode {
	switch path.Ext(target) {
	case ".html", ".txt":
		return ModeText
	case ".gif", ".png", ".jpg":
		return ModeBinary
	}
	return ModeSynthetic
}

// probeMime sniffs the content type from the file's leading bytes rather
// than trusting the extension. Returns "" when the file cannot be read.
func probeMime(p string) string {
	f, err := os.Open(p)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if n == 0 && err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ""
	}
	return http.DetectContentType(buf[:n])
}
