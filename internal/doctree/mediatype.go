package doctree

import (
	"path/filepath"
	"strings"
)

// Media types accepted as documents.
const (
	MediaTypeHTML = "text/html"
	MediaTypePDF  = "application/pdf"

	// DefaultMediaType is returned for unknown extensions.
	DefaultMediaType = "application/octet-stream"
)

// MediaTypeLookup resolves a file name to a media type.
// Implementations must return DefaultMediaType for unknown names.
type MediaTypeLookup func(name string) string

// DefaultMediaTypes maps lower-case extensions to media types.
// It covers the documents themselves plus the assets they commonly reference,
// so served files get a sensible Content-Type.
var DefaultMediaTypes = map[string]string{
	// Documents
	".html":  MediaTypeHTML,
	".htm":   MediaTypeHTML,
	".shtml": MediaTypeHTML,
	".pdf":   MediaTypePDF,

	// Markup and text
	".xhtml":    "application/xhtml+xml",
	".xml":      "application/xml",
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".csv":      "text/csv",
	".css":      "text/css",
	".js":       "application/javascript",
	".mjs":      "application/javascript",
	".json":     "application/json",

	// Images
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",

	// Fonts
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",

	// Office and archives
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".epub": "application/epub+zip",
	".zip":  "application/zip",
}

// NewMediaTypeLookup returns a lookup backed by the given extension table.
// Keys are extensions with the leading dot, matched case-insensitively.
func NewMediaTypeLookup(table map[string]string) MediaTypeLookup {
	normalized := make(map[string]string, len(table))
	for ext, mediaType := range table {
		normalized[strings.ToLower(ext)] = mediaType
	}
	return func(name string) string {
		if mediaType, ok := normalized[extensionOf(name)]; ok {
			return mediaType
		}
		return DefaultMediaType
	}
}

// extensionOf returns the lower-cased extension of name with its leading dot.
// A name without a dot is treated as a bare extension, so "pdf" yields ".pdf".
func extensionOf(name string) string {
	base := filepath.Base(name)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return strings.ToLower(base[i:])
	}
	return "." + strings.ToLower(base)
}

// LookupMediaType resolves a file name against DefaultMediaTypes.
var LookupMediaType = NewMediaTypeLookup(DefaultMediaTypes)

// IsDocumentType reports whether a media type is one of the accepted document kinds.
// HTML matches by prefix so charset-qualified variants are accepted.
func IsDocumentType(mediaType string) bool {
	return strings.HasPrefix(mediaType, MediaTypeHTML) || mediaType == MediaTypePDF
}

// IsPDF reports whether a media type is PDF.
func IsPDF(mediaType string) bool {
	return mediaType == MediaTypePDF
}

// IsHTML reports whether a media type is HTML.
func IsHTML(mediaType string) bool {
	return strings.HasPrefix(mediaType, MediaTypeHTML)
}
