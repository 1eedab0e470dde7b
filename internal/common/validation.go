package common

import (
	"fmt"
	"slices"

	"resumefit/internal/formatters"
)

// ValidateOutputFormat checks format against the configured allow-list and
// against the formats the registry can actually render. An empty allow-list
// only applies the registry check.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) > 0 && !slices.Contains(supportedFormats, format) {
		return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
			format, supportedFormats)
	}

	available := formatters.GlobalRegistry.GetSupportedFormats()
	if !slices.Contains(available, format) {
		return fmt.Errorf("no formatter available for '%s'. Available formats: %v", format, available)
	}
	return nil
}
