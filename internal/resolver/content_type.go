package resolver

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ContentType returns the MIME type for the file at filePath. Well known
// site extensions are answered from a fixed table, then the system mime
// database is asked, and as a last resort the file content is sniffed.
func ContentType(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js", ".mjs":
		return "application/javascript"
	case ".json":
		return "application/json"
	case ".ico":
		return "image/x-icon"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ttf":
		return "font/ttf"
	case ".xml":
		return "application/xml"
	case ".txt":
		return "text/plain; charset=utf-8"
	}

	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}

	mt, err := mimetype.DetectFile(filePath)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
