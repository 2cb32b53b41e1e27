package notification

import (
	"regexp"

	domain "github.com/bazaarly/backbone/pkg/domain/notification"
)

var variablePattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.\-]*)\s*\}\}`)

// Render substitutes every {{name}} marker with its value from data.
// Absent and null values render as an empty string.
func Render(template string, data domain.Data) string {
	return RenderEncoded(template, data, nil)
}

// RenderEncoded is Render with each substituted value passed through enc.
// Literal template text is never encoded.
func RenderEncoded(template string, data domain.Data, enc domain.ValueEncoder) string {
	if template == "" {
		return ""
	}
	return variablePattern.ReplaceAllStringFunc(template, func(marker string) string {
		name := variablePattern.FindStringSubmatch(marker)[1]
		value := data.Lookup(name)
		if enc != nil && value != "" {
			return enc.EncodeValue(value)
		}
		return value
	})
}
