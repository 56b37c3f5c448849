package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Path", flags.Path, "./locales"},
		{"Text", flags.Text, "Hello, world!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Boolean defaults should be false
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Verbose", flags.Verbose},
		{"Force", flags.Force},
		{"Analytics", flags.Analytics},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Languages and services fall back to the configuration when empty
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"SourceLang", flags.SourceLang},
		{"TargetLang", flags.TargetLang},
		{"Service", flags.Service},
		{"Output", flags.Output},
		{"Addr", flags.Addr},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}
