package fileinfo

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultExtensions are the upload types accepted when nothing is configured
var DefaultExtensions = []string{"jpg", "jpeg", "png", "heic", "webp", "tiff", "pdf"}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".dng":  "image/x-adobe-dng",
	".pdf":  "application/pdf",
}

// Ext returns the lower-cased extension of filename without the dot
func Ext(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// AllowList checks file names against a set of extensions
type AllowList struct {
	exts  []string
	index map[string]struct{}
}

// NewAllowList builds an AllowList. Extensions are matched case-insensitively,
// with or without a leading dot.
func NewAllowList(exts []string) *AllowList {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	a := &AllowList{index: make(map[string]struct{}, len(exts))}
	for _, e := range exts {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
		if e == "" {
			continue
		}
		if _, dup := a.index[e]; dup {
			continue
		}
		a.index[e] = struct{}{}
		a.exts = append(a.exts, e)
	}
	return a
}

// Allowed reports whether filename has an accepted extension
func (a *AllowList) Allowed(filename string) bool {
	_, ok := a.index[Ext(filename)]
	return ok
}

// Extensions returns the accepted extensions in configuration order
func (a *AllowList) Extensions() []string {
	return append([]string(nil), a.exts...)
}

// String lists the accepted extensions for error messages
func (a *AllowList) String() string {
	return strings.Join(a.exts, ", ")
}

// ContentType returns the content type for a file based on its extension
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Sniff reports the content type detected from the file's leading bytes.
// It is informational only; classification is left to exiftool.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}
