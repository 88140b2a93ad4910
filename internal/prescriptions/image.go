package prescriptions

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

func normalizeContentType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("content type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("content type invalid: %w", err)
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}
	if _, ok := allowedImageTypes[mediaType]; !ok {
		return "", fmt.Errorf("only jpeg, png or gif images are accepted")
	}
	return mediaType, nil
}

// checkMagicBytes rejects uploads whose content does not match the declared type.
func checkMagicBytes(declared string, data []byte) error {
	detected := mimetype.Detect(data)
	if !detected.Is(declared) {
		return fmt.Errorf("file content is %s, not %s", detected.String(), declared)
	}
	return nil
}
