package ext

import (
	"path/filepath"
	"testing"
)

func TestDefaultValue(t *testing.T) {
	if got := DefaultValue(0, 4); got != 4 {
		t.Errorf("expected fallback 4, got %d", got)
	}
	if got := DefaultValue(2, 4); got != 2 {
		t.Errorf("expected value 2, got %d", got)
	}
	if got := DefaultValue("", "ssh"); got != "ssh" {
		t.Errorf("expected fallback ssh, got %q", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ value, low, high, expected int }{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.value, tt.low, tt.high); got != tt.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tt.value, tt.low, tt.high, got, tt.expected)
		}
	}
}

func TestTildeRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "src", "repos")
	if got := ReplaceHomeDirWithTilde(path); got != "~/src/repos" {
		t.Errorf("expected ~/src/repos, got %q", got)
	}
	if got := ExpandTilde("~/src/repos"); got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
	if got := ReplaceHomeDirWithTilde(home + "x/other"); got != home+"x/other" {
		t.Errorf("sibling directory must not be abbreviated, got %q", got)
	}
	if got := ExpandTilde("relative/dir"); got != "relative/dir" {
		t.Errorf("relative path must be unchanged, got %q", got)
	}
}

func TestNullableBool(t *testing.T) {
	var nb NullableBool
	if nb.Val(true) != true || nb.String() != "<nil>" {
		t.Errorf("unset value should fall back to the default")
	}
	if err := nb.Set("false"); err != nil {
		t.Fatal(err)
	}
	if nb.Val(true) != false {
		t.Errorf("expected explicit false to win over the default")
	}
	if err := nb.Set("maybe"); err == nil {
		t.Errorf("expected an error for a non-boolean value")
	}

	var excluded NullableBool
	if err := (Negated{Target: &excluded}).Set("true"); err != nil {
		t.Fatal(err)
	}
	if excluded.Val(true) != false {
		t.Errorf("negated flag should store false")
	}

	fallback := NewNullableBool(true)
	if got := (NullableBool{}).Or(fallback); got.Val(false) != true {
		t.Errorf("Or should return the fallback when unset")
	}
	if got := excluded.Or(fallback); got.Val(true) != false {
		t.Errorf("Or should keep a set value")
	}
}
