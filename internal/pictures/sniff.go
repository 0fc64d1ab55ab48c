// Package pictures recognises the image formats the catalog accepts and
// moves item pictures between the catalog and a directory on disk.
package pictures

import (
	"net/http"
	"path/filepath"
	"strings"
)

// sniffedTypes are the picture formats http.DetectContentType recognises
// that the catalog stores. WebP has no entry there and is matched by hand.
var sniffedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP matches the RIFF header with a WEBP form type.
func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// DetectMIME reports the picture format of data from its leading bytes.
// Anything that is not JPEG, PNG, GIF or WebP yields "", false.
func DetectMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	if mimeType := http.DetectContentType(data); sniffedTypes[mimeType] {
		return mimeType, true
	}
	return "", false
}

// ExtForMIME maps an accepted MIME type to a file extension. Unknown types
// get ".bin".
func ExtForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

// isPictureFile reports whether name carries one of the extensions ExtForMIME
// produces for an accepted type.
func isPictureFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
