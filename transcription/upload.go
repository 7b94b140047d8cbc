package transcription

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/skillsenselab/scribe/errors"
)

// allowedExtensions is the fixed set of accepted media container suffixes.
var allowedExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".wav":  true,
	".m4a":  true,
	".avi":  true,
	".flac": true,
	".aac":  true,
	".mov":  true,
	".webm": true,
}

// allowedMIMEPrefixes are the accepted declared media-type prefixes.
var allowedMIMEPrefixes = []string{"audio/", "video/"}

// AllowedExtensions returns the accepted extensions in sorted order.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ValidateUpload checks an upload's declared filename and media type against
// the allow-lists. It trusts caller-declared metadata and does not inspect
// file contents.
func ValidateUpload(filename, contentType string) *errors.AppError {
	ext := strings.ToLower(filepath.Ext(filename))

	if !allowedExtensions[ext] {
		return errors.UnsupportedMedia(ext, AllowedExtensions())
	}

	for _, prefix := range allowedMIMEPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return nil
		}
	}
	return errors.UnsupportedMedia(ext, AllowedExtensions()).
		WithDetail("content_type", contentType)
}
