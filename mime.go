package nimbus

import "strings"

// MIMEType represents the media type of inline content.
type MIMEType string

const (
	MIMEText     MIMEType = "text/plain"
	MIMEMarkdown MIMEType = "text/markdown"
	MIMEPDF      MIMEType = "application/pdf"

	MIMEImagePNG  MIMEType = "image/png"
	MIMEImageJPEG MIMEType = "image/jpeg"
	MIMEImageWEBP MIMEType = "image/webp"
)

// Type returns the general type of the MIMEType (e.g., "image" or "file").
func (m MIMEType) Type() string {
	if strings.HasPrefix(string(m), "image/") {
		return "image"
	}
	return "file"
}

// Format returns the subtype of the MIMEType (e.g., "png" for "image/png").
func (m MIMEType) Format() string {
	parts := strings.SplitN(string(m), "/", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return "octet-stream"
}
