package imagegen

import "regexp"

var dataURLPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg|webp);base64,`)

// StripDataURLPrefix removes a leading image data-URL declaration so callers
// can pass either a bare base64 payload or a full data URL.
func StripDataURLPrefix(s string) string {
	return dataURLPrefix.ReplaceAllString(s, "")
}
