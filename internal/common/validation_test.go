package common

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	configured := []string{"json", "text", "markdown"}

	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
		expectedError    string
	}{
		{name: "json", format: "json", supportedFormats: configured},
		{name: "text", format: "text", supportedFormats: configured},
		{name: "markdown", format: "markdown", supportedFormats: configured},
		{
			name:             "not configured",
			format:           "xml",
			supportedFormats: configured,
			expectError:      true,
			expectedError:    "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:             "case sensitive",
			format:           "JSON",
			supportedFormats: configured,
			expectError:      true,
			expectedError:    "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:             "empty format",
			format:           "",
			supportedFormats: configured,
			expectError:      true,
		},
		{
			name:             "narrowed allow-list",
			format:           "text",
			supportedFormats: []string{"json"},
			expectError:      true,
			expectedError:    "unsupported output format 'text'. Supported formats: [json]",
		},
		{
			name:             "no allow-list still needs a formatter",
			format:           "yaml",
			supportedFormats: nil,
			expectError:      true,
			expectedError:    "no formatter available for 'yaml'. Available formats: [json markdown text]",
		},
		{
			name:             "configured but unrenderable",
			format:           "csv",
			supportedFormats: []string{"json", "csv"},
			expectError:      true,
		},
		{name: "no allow-list known formatter", format: "markdown", supportedFormats: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
					return
				}
				if tt.expectedError != "" && err.Error() != tt.expectedError {
					t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}
