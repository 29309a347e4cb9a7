package validation

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	xwebp "golang.org/x/image/webp"
)

// Upload limits.
const (
	MaxAttachmentBytes = 10 << 20 // 10 MB per file
	MaxAttachments     = 5
	maxImagePixels     = 12000
)

// allowedMediaTypes is the allow-list of sniffed attachment types. Anything
// not detected as one of these is rejected regardless of the declared
// filename; the extension is never trusted.
var allowedMediaTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"image/webp":      {},
	"model/step":      {},
	"image/vnd.dxf":   {},
}

// SniffAttachment inspects the actual content of an uploaded file and
// returns the detected media type, or an error when the content is not on
// the allow-list or contradicts its declared filename.
func SniffAttachment(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}
	if len(data) > MaxAttachmentBytes {
		return "", fmt.Errorf("file exceeds %d MB limit", MaxAttachmentBytes>>20)
	}

	mediaType := detectMediaType(data)
	if _, ok := allowedMediaTypes[mediaType]; !ok {
		return "", fmt.Errorf("file type %q is not allowed", mediaType)
	}

	if err := checkDeclaredExtension(filename, mediaType); err != nil {
		return "", err
	}

	if mediaType == "image/webp" {
		// stdlib image has no webp support; decode the header to confirm
		// the payload really is webp and the dimensions are sane.
		cfg, err := xwebp.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("corrupt webp image: %w", err)
		}
		if cfg.Width > maxImagePixels || cfg.Height > maxImagePixels {
			return "", fmt.Errorf("image dimensions exceed %dpx limit", maxImagePixels)
		}
	}

	return mediaType, nil
}

func detectMediaType(data []byte) string {
	// CAD interchange formats are text based and come out of
	// http.DetectContentType as text/plain; identify them by signature.
	if bytes.HasPrefix(data, []byte("ISO-10303-21")) {
		return "model/step"
	}
	if looksLikeDXF(data) {
		return "image/vnd.dxf"
	}

	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	return detected
}

// looksLikeDXF checks for the DXF group-code preamble ("0" line followed by
// "SECTION") within the head of the file.
func looksLikeDXF(data []byte) bool {
	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	fields := strings.Fields(string(head))
	for i := 0; i+1 < len(fields) && i < 8; i++ {
		if fields[i] == "0" && fields[i+1] == "SECTION" {
			return true
		}
	}
	return false
}

var extensionsByType = map[string][]string{
	"application/pdf": {".pdf"},
	"image/png":       {".png"},
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/webp":      {".webp"},
	"model/step":      {".step", ".stp"},
	"image/vnd.dxf":   {".dxf"},
}

func checkDeclaredExtension(filename, mediaType string) error {
	name := strings.ToLower(filename)
	for _, ext := range extensionsByType[mediaType] {
		if strings.HasSuffix(name, ext) {
			return nil
		}
	}
	return fmt.Errorf("filename %q does not match detected type %s", filename, mediaType)
}
