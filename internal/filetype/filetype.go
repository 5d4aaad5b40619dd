// Package filetype maps file names and URLs to semantic file categories.
package filetype

import (
	"net/url"
	"sort"
	"strings"

	"filegate/internal/domain"
)

// extensions is the static extension → category table.
var extensions = map[string]domain.FileCategory{
	"xlsx": domain.CategoryExcel,
	"xls":  domain.CategoryExcel,

	"csv": domain.CategoryCSV,

	"docx": domain.CategoryWord,
	"doc":  domain.CategoryWord,

	"txt": domain.CategoryText,
	"rtf": domain.CategoryText,

	"pdf": domain.CategoryPDF,

	"json": domain.CategoryJSON,

	"yaml": domain.CategoryYAML,
	"yml":  domain.CategoryYAML,

	"xml": domain.CategoryXML,

	"html": domain.CategoryHTML,
	"htm":  domain.CategoryHTML,

	"md":       domain.CategoryMarkdown,
	"markdown": domain.CategoryMarkdown,

	"jpg":  domain.CategoryImage,
	"jpeg": domain.CategoryImage,
	"png":  domain.CategoryImage,
	"gif":  domain.CategoryImage,
	"bmp":  domain.CategoryImage,
	"webp": domain.CategoryImage,
	"svg":  domain.CategoryImage,
	"tiff": domain.CategoryImage,
	"tif":  domain.CategoryImage,
	"heic": domain.CategoryImage,
	"ico":  domain.CategoryImage,

	"mp3":  domain.CategoryAudio,
	"wav":  domain.CategoryAudio,
	"ogg":  domain.CategoryAudio,
	"flac": domain.CategoryAudio,
	"aac":  domain.CategoryAudio,
	"m4a":  domain.CategoryAudio,
	"wma":  domain.CategoryAudio,

	"mp4":  domain.CategoryVideo,
	"avi":  domain.CategoryVideo,
	"mov":  domain.CategoryVideo,
	"wmv":  domain.CategoryVideo,
	"flv":  domain.CategoryVideo,
	"mkv":  domain.CategoryVideo,
	"webm": domain.CategoryVideo,
	"m4v":  domain.CategoryVideo,
}

// Extension returns the lowercased text after the last '.' in filename, or "".
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// Classify returns the category for filename based on its extension.
func Classify(filename string) domain.FileCategory {
	if c, ok := extensions[Extension(filename)]; ok {
		return c
	}
	return domain.CategoryUnknown
}

// FileNameFromURL derives a display file name from a URL: decoded, last path
// segment, query stripped. It never fails and falls back to "unknown".
func FileNameFromURL(rawURL string) string {
	decoded, err := url.PathUnescape(rawURL)
	if err != nil {
		return "unknown"
	}
	segments := strings.Split(decoded, "/")
	name := segments[len(segments)-1]
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "unknown"
	}
	return name
}

// MethodFor reports how a category is processed.
func MethodFor(c domain.FileCategory) domain.ParseMethod {
	switch {
	case c.IsMedia():
		return domain.MethodAI
	case c == domain.CategoryPDF:
		return domain.MethodLocalThenAI
	default:
		return domain.MethodLocal
	}
}

// SupportedFormats lists every known extension with its category and method, sorted by extension.
func SupportedFormats() []domain.SupportedFormat {
	out := make([]domain.SupportedFormat, 0, len(extensions))
	for ext, c := range extensions {
		out = append(out, domain.SupportedFormat{
			Extension: ext,
			Category:  c,
			Method:    MethodFor(c),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Extension < out[j].Extension })
	return out
}
