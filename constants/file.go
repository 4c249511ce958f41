package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for upload.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

const (
	// ReportFilename is the download name of every generated report.
	ReportFilename = "extracted_data.xlsx"
	// XLSXMimeType is the modern Office spreadsheet MIME type.
	XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// FilenameColumn is the first column of every report row.
	FilenameColumn = "Filename"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without dot) can be uploaded.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
