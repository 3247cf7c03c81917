// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/admin-cost/pkg/constants"
)

var outputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
	constants.OutputFormatYAML,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, known := range outputFormats {
		if format == known {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV,
		constants.OutputFormatJSON, constants.OutputFormatYAML, format)
}
