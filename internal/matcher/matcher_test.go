package matcher

import (
	"testing"

	"github.com/agentstation/mavroute/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		wantType    PatternType
		wantErr     bool
	}{
		{name: "glob", pattern: "GCS*", patternType: Glob, wantType: Glob},
		{name: "regex", pattern: "^udp(in|out)$", patternType: Regex, wantType: Regex},
		{name: "invalid regex", pattern: "(unclosed", patternType: Regex, wantErr: true},
		{name: "auto glob", pattern: "/dev/tty*", patternType: Auto, wantType: Glob},
		{name: "auto regex", pattern: `^link\d+$`, patternType: Auto, wantType: Regex},
		{name: "auto plain", pattern: "Telemetry", patternType: Auto, wantType: Glob},
		{name: "unknown type", pattern: "x", patternType: PatternType(7), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.IsValidationError(err) {
					t.Errorf("New() error = %T, want validation error", err)
				}
				return
			}
			if m.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", m.Type(), tt.wantType)
			}
			if m.Pattern() != tt.pattern {
				t.Errorf("Pattern() = %q, want %q", m.Pattern(), tt.pattern)
			}
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		opts    Options
		input   string
		want    bool
	}{
		{name: "exact", pattern: "GCS Link", input: "GCS Link", want: true},
		{name: "whole input", pattern: "GCS", input: "GCS Link", want: false},
		{name: "star", pattern: "GCS*", input: "GCS Link", want: true},
		{name: "star crosses slash", pattern: "/dev/tty*", input: "/dev/ttyAMA0", want: true},
		{name: "star crosses many slashes", pattern: "/dev/*", input: "/dev/serial/by-id/usb", want: true},
		{name: "question", pattern: "udp?n", input: "udpin", want: true},
		{name: "class", pattern: "link[0-9]", input: "link7", want: true},
		{name: "negated class", pattern: "link[!0-9]", input: "link7", want: false},
		{name: "unterminated class", pattern: "a[b", input: "a[b", want: true},
		{name: "escaped star", pattern: `a\*`, input: "a*", want: true},
		{name: "escaped star literal", pattern: `a\*`, input: "ab", want: false},
		{name: "regex meta is literal", pattern: "10.0.0.?", input: "10.0.0.2", want: true},
		{name: "regex meta dot", pattern: "10.0.0.?", input: "10x0.0.2", want: false},
		{name: "case sensitive", pattern: "gcs*", input: "GCS Link", want: false},
		{name: "case insensitive", pattern: "gcs*", opts: Options{CaseInsensitive: true}, input: "GCS Link", want: true},
		{name: "regex unanchored", pattern: `(in|out)$`, input: "udpin", want: true},
		{name: "regex insensitive", pattern: `^TCP`, opts: Options{CaseInsensitive: true}, input: "tcpout", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(Auto, tt.pattern, tt.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := m.Match(tt.input); got != tt.want {
				t.Errorf("Match(%q) with %q = %v, want %v", tt.input, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestMatcher_Nil(t *testing.T) {
	var m *Matcher
	if !m.Match("anything") {
		t.Error("nil matcher should match everything")
	}
}

func TestMatcher_MatchAny(t *testing.T) {
	m, err := New(Glob, "*14550")
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchAny("GCS", "udpin:0.0.0.0:14550") {
		t.Error("MatchAny() = false, want true")
	}
	if m.MatchAny("GCS", "tcpin:0.0.0.0:5760") {
		t.Error("MatchAny() = true, want false")
	}
}

func TestGlobToRegex(t *testing.T) {
	tests := map[string]string{
		"*":      "^.*$",
		"a?c":    `^a.c$`,
		"[!ab]x": `^[^ab]x$`,
		"1.2":    `^1\.2$`,
		`x\[`:   `^x\[$`,
		"[a\\]]": `^[a\]]$`,
	}
	for glob, want := range tests {
		if got := GlobToRegex(glob); got != want {
			t.Errorf("GlobToRegex(%q) = %q, want %q", glob, got, want)
		}
	}
}

func TestPatternTypeString(t *testing.T) {
	for pt, want := range map[PatternType]string{Glob: "glob", Regex: "regex", Auto: "auto", PatternType(9): "unknown"} {
		if got := pt.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
