package ingest

import (
	"strings"
	"unicode"
)

// File is one uploaded file as received from the multipart form.
type File struct {
	Name        string
	Data        []byte
	ContentType string
}

// Empty reports whether the file carries no bytes. Empty files are skipped
// by the lenient staging policy rather than forwarded to the object store.
func (f File) Empty() bool {
	return len(f.Data) == 0
}

// DeriveTitle turns an original filename into a display title: everything
// before the last dot, falling back to the whole name when that leaves
// nothing (no extension, or a leading-dot name like ".env").
func DeriveTitle(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name
	}
	return name[:idx]
}

// sanitizeFileName normalizes a client-supplied filename into something safe
// to embed in an object key.
func sanitizeFileName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
