package logger

import "testing"

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "filename unchanged",
			input:    "holiday-clip.mkv",
			expected: "holiday-clip.mkv",
		},
		{
			name:     "path unchanged",
			input:    "/var/media/incoming/clip.mp4",
			expected: "/var/media/incoming/clip.mp4",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "newline escaped",
			input:    "line1\nline2",
			expected: "line1\\nline2",
		},
		{
			name:     "carriage return escaped",
			input:    "frame=100\rframe=200",
			expected: "frame=100\\rframe=200",
		},
		{
			name:     "tab escaped",
			input:    "col1\tcol2",
			expected: "col1\\tcol2",
		},
		{
			name:     "null byte escaped",
			input:    "before\x00after",
			expected: "before\\x00after",
		},
		{
			name:     "ANSI escape code escaped",
			input:    "text\x1b[31mred\x1b[0mnormal",
			expected: "text\\x1b[31mred\\x1b[0mnormal",
		},
		{
			name:     "bell character escaped",
			input:    "alert\x07bell",
			expected: "alert\\x07bell",
		},
		{
			name:     "DEL character escaped",
			input:    "delete\x7fchar",
			expected: "delete\\x7fchar",
		},
		{
			name:     "unicode accented chars preserved",
			input:    "café résumé.mkv",
			expected: "café résumé.mkv",
		},
		{
			name:     "unicode CJK preserved",
			input:    "中文文件名.mp4",
			expected: "中文文件名.mp4",
		},
		{
			name:     "fake log entry injection",
			input:    "clip.mp4\nERROR: fake log entry",
			expected: "clip.mp4\\nERROR: fake log entry",
		},
		{
			name:     "terminal clear attempt",
			input:    "\x1b[2Jcleared",
			expected: "\\x1b[2Jcleared",
		},
		{
			name:     "filename with spaces and quotes",
			input:    `my clip "final".mkv`,
			expected: `my clip "final".mkv`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeForLog(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeForLog(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeForLog_AllControlChars(t *testing.T) {
	for i := 0; i < 32; i++ {
		input := string(rune(i))
		result := SanitizeForLog(input)
		if result == input {
			t.Errorf("Control char %d (0x%02x) was not escaped", i, i)
		}
	}

	if result := SanitizeForLog(string(rune(127))); result != "\\x7f" {
		t.Errorf("DEL char (127) not properly escaped: got %q, want %q", result, "\\x7f")
	}
}
