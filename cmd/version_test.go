package cmd

import "testing"

func TestDisplayVersion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(devel)", "(devel)"},
		{"v1.2.3", "v1.2.3"},
		{"1.2", "v1.2.0"},
		{"v0.4.0-rc.1", "v0.4.0-rc.1"},
		{"1.0.0+build.7", "v1.0.0+build.7"},
		{"not-a-version", "not-a-version"},
	}
	for _, tt := range tests {
		if got := displayVersion(tt.in); got != tt.want {
			t.Errorf("displayVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
