package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadDefaultStyle(t *testing.T) {
	css, err := LoadStyle(DefaultStyleName)
	if err != nil {
		t.Fatalf("LoadStyle(%q): %v", DefaultStyleName, err)
	}
	if css == "" {
		t.Fatal("default style is empty")
	}
	if !strings.Contains(css, "page-break-inside") {
		t.Error("default style has no pagination rules")
	}
	// The built-in stylesheet must not trigger any resource fetches.
	if strings.Contains(css, "url(") {
		t.Error("default style references external resources")
	}
}

func TestLoadStyleNotFound(t *testing.T) {
	if _, err := LoadStyle("nope"); !errors.Is(err, ErrStyleNotFound) {
		t.Fatalf("LoadStyle = %v, want ErrStyleNotFound", err)
	}
}

func TestValidateAssetName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"default", false},
		{"report-a4", false},
		{"", true},
		{"a.css", true},
		{"../default", true},
		{"a/b", true},
		{`a\b`, true},
	}
	for _, tt := range tests {
		err := ValidateAssetName(tt.name)
		if tt.wantErr && !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("ValidateAssetName(%q) = %v, want ErrInvalidAssetName", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("ValidateAssetName(%q) = %v, want nil", tt.name, err)
		}
	}
}
