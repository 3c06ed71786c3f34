package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestJournalRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	j, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	j.AddNotice(":irc.test NOTICE alice :first")
	j.AddNotice(":irc.test NOTICE alice :second")
	j.AddCommand("free")
	j.AddCommand("create --invite bob")

	if err := j.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// File stores oldest first
	data, _ := os.ReadFile(filepath.Join(tmpDir, "notices.txt"))
	expected := ":irc.test NOTICE alice :first\n:irc.test NOTICE alice :second\n"
	if string(data) != expected {
		t.Errorf("Notices file format wrong: got %q", string(data))
	}

	loaded, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	notices := loaded.Notices()
	if len(notices) != 2 || notices[0] != ":irc.test NOTICE alice :second" {
		t.Errorf("Notices should be newest first, got %q", notices)
	}
	commands := loaded.Commands()
	if len(commands) != 2 || commands[0] != "free" || commands[1] != "create --invite bob" {
		t.Errorf("Unexpected commands %q", commands)
	}
}

func TestOpenMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	j, err := Open(dir)
	if err != nil {
		t.Fatalf("Open should not fail for a missing directory: %v", err)
	}
	if len(j.Notices()) != 0 || len(j.Commands()) != 0 {
		t.Errorf("Expected empty journal")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Data dir not created: %v", err)
	}
}

func TestAddNoticeMaxEntries(t *testing.T) {
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < maxEntries; i++ {
		j.AddNotice("entry")
	}
	j.AddNotice("new")

	notices := j.Notices()
	if len(notices) != maxEntries {
		t.Errorf("Expected %d notices (max), got %d", maxEntries, len(notices))
	}
	if notices[0] != "new" {
		t.Errorf("New notice should be first")
	}
}

func TestAddCommandMaxEntries(t *testing.T) {
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i <= maxEntries; i++ {
		j.AddCommand(fmt.Sprintf("cmd %d", i))
	}

	commands := j.Commands()
	if len(commands) != maxEntries {
		t.Fatalf("Expected %d commands (max), got %d", maxEntries, len(commands))
	}
	if commands[0] != "cmd 1" {
		t.Errorf("Oldest command should be dropped, first is %q", commands[0])
	}
	if commands[maxEntries-1] != fmt.Sprintf("cmd %d", maxEntries) {
		t.Errorf("Newest command should be last, got %q", commands[maxEntries-1])
	}
}

func TestNoticesCopy(t *testing.T) {
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	j.AddNotice("kept")

	notices := j.Notices()
	notices[0] = "changed"

	if j.Notices()[0] != "kept" {
		t.Error("Notices returned the internal slice")
	}
}
