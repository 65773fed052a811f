package utils

import (
	"fmt"
	"strings"
	"time"
)

const archiveTimestampLayout = "20060102_150405"

// SanitizeFilename strips path separators and characters that are unsafe in
// storage keys. Only the base name of the upload survives.
func SanitizeFilename(filename string) string {
	// Take the last path element regardless of separator style.
	if idx := strings.LastIndexAny(filename, "/\\"); idx >= 0 {
		filename = filename[idx+1:]
	}

	replacer := strings.NewReplacer(
		"..", "", "<", "", ">", "", ":", "", "\"", "",
		"|", "", "?", "", "*", "", "\x00", "",
	)
	return strings.TrimSpace(replacer.Replace(filename))
}

// ArchiveFilename builds the stored name of an archival image copy:
// CLASS_TIMESTAMP_USERNAME.ext, with spaces removed from the class name.
func ArchiveFilename(class string, timestamp time.Time, username, ext string) string {
	class = strings.ReplaceAll(class, " ", "")
	username = SanitizeFilename(username)
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s_%s_%s.%s", class, timestamp.Format(archiveTimestampLayout), username, ext)
}
