package upload

import (
	"mime"
	"path/filepath"
)

// DefaultMimeType is used when nothing better can be derived from the file
// path.
const DefaultMimeType = "application/octet-stream"

// ResolveMimeType picks the MIME type to use for a file. An explicit value
// always wins; otherwise the type is guessed from the path's extension. This
// is a best-effort extension lookup, not content sniffing.
func ResolveMimeType(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	guessed := mime.TypeByExtension(filepath.Ext(path))
	if guessed == "" {
		return DefaultMimeType
	}
	// TypeByExtension may append parameters ("text/plain; charset=utf-8");
	// CDF wants the bare media type.
	if mediaType, _, err := mime.ParseMediaType(guessed); err == nil {
		return mediaType
	}
	return guessed
}
