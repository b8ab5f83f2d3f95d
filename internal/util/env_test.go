package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{" on ", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		t.Setenv("TEST_BOOL_ENV", tc.value)
		if got := ParseBoolEnv("TEST_BOOL_ENV", tc.defaultValue); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tc.value, tc.defaultValue, got, tc.want)
		}
	}
}
