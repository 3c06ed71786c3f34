package main

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestParseRoomID(t *testing.T) {
	valid := map[string]int{"0": 0, "5": 5, "999": 999}
	for in, want := range valid {
		got, err := parseRoomID(in)
		if err != nil || got != want {
			t.Errorf("parseRoomID(%q) = %d, %v; want %d", in, got, err, want)
		}
	}

	for _, in := range []string{"-1", "1000", "abc", ""} {
		if _, err := parseRoomID(in); err == nil {
			t.Errorf("parseRoomID(%q) should fail", in)
		}
	}
}

func TestDiffNames(t *testing.T) {
	joined, left := diffNames([]string{"alice", "bob"}, []string{"bob", "carol", "dave"})

	if !slices.Equal(joined, []string{"carol", "dave"}) {
		t.Errorf("Unexpected joined %q", joined)
	}
	if !slices.Equal(left, []string{"alice"}) {
		t.Errorf("Unexpected left %q", left)
	}

	joined, left = diffNames(nil, []string{"alice"})
	if !slices.Equal(joined, []string{"alice"}) || len(left) != 0 {
		t.Errorf("First poll: joined %q left %q", joined, left)
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "cruce version dev\n") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestStatusRejectsBadRoom(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"status", "1000", "-c", filepath.Join(t.TempDir(), "config.yaml")})

	// Rejected before any configuration is loaded or connection made.
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "invalid room id") {
		t.Errorf("Expected invalid room id error, got %v", err)
	}
}

func TestMissingNick(t *testing.T) {
	dir := t.TempDir()
	a := &app{configPath: filepath.Join(dir, "config.yaml")}

	if err := a.load(); err == nil || !strings.Contains(err.Error(), "nickname") {
		t.Errorf("Expected missing nickname error, got %v", err)
	}
}
