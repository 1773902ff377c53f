package utils

import "testing"

func TestIsValidNRIC(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"dashed form", "950101-14-5678", true},
		{"plain form", "950101145678", true},
		{"surrounding whitespace", "  950101-14-5678  ", true},
		{"too short", "95010114567", false},
		{"too long", "9501011456789", false},
		{"letters", "95O101-14-5678", false},
		{"month zero", "950001-14-5678", false},
		{"month thirteen", "951301-14-5678", false},
		{"day zero", "950100-14-5678", false},
		{"day thirty two", "950132-14-5678", false},
		{"partial dashes", "950101-145678", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidNRIC(tt.input); got != tt.want {
				t.Errorf("IsValidNRIC(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNRIC(t *testing.T) {
	if got := NormalizeNRIC(" 950101-14-5678 "); got != "950101145678" {
		t.Errorf("NormalizeNRIC = %q, want 950101145678", got)
	}
}

func TestFormatNRIC(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"950101145678", "950101-14-5678"},
		{"950101-14-5678", "950101-14-5678"},
		{"not-an-nric", "not-an-nric"},
	}

	for _, tt := range tests {
		if got := FormatNRIC(tt.input); got != tt.want {
			t.Errorf("FormatNRIC(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
