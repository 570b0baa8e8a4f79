package version

import "testing"

func TestIsValidBuild(t *testing.T) {
	tests := []struct {
		build    string
		expected bool
	}{
		{"", false},
		{"abc123", true},
		{"rc-1.linux", true},
		{"with space", false},
		{"semi;colon", false},
	}
	for _, test := range tests {
		if isValidBuild(test.build) != test.expected {
			t.Errorf("isValidBuild(%q): expected %t", test.build, test.expected)
		}
	}
}
