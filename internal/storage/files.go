package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const maxEntries = 500

const (
	noticesFile  = "notices.txt"
	commandsFile = "commands.txt"
)

// Journal keeps the unsolicited server lines seen during sessions and a
// history of the commands that were run, persisted under a data directory.
type Journal struct {
	dir string

	mu       sync.Mutex
	notices  []string // newest first
	commands []string // oldest first
}

// Open loads the journal from dataDir, creating the directory if needed.
// Missing files yield an empty journal.
func Open(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	notices, err := loadNotices(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load notices: %w", err)
	}
	commands, err := loadCommands(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load commands: %w", err)
	}

	return &Journal{dir: dataDir, notices: notices, commands: commands}, nil
}

// AddNotice records a server line, keeping the newest first.
func (j *Journal) AddNotice(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.notices = append([]string{entry}, j.notices...)
	if len(j.notices) > maxEntries {
		j.notices = j.notices[:maxEntries]
	}
}

// AddCommand appends a command entry.
func (j *Journal) AddCommand(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.commands = append(j.commands, entry)
	if len(j.commands) > maxEntries {
		j.commands = j.commands[1:]
	}
}

// Notices returns a copy of the recorded notices, newest first.
func (j *Journal) Notices() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.notices...)
}

// Commands returns a copy of the command history, oldest first.
func (j *Journal) Commands() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.commands...)
}

// Save writes both files back to the data directory.
func (j *Journal) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// File stores oldest first
	if err := writeLines(filepath.Join(j.dir, noticesFile), reverse(j.notices)); err != nil {
		return fmt.Errorf("failed to save notices: %w", err)
	}
	if err := writeLines(filepath.Join(j.dir, commandsFile), j.commands); err != nil {
		return fmt.Errorf("failed to save commands: %w", err)
	}
	return nil
}

func loadNotices(dataDir string) ([]string, error) {
	lines, err := readLines(filepath.Join(dataDir, noticesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	lines = reverse(lines)
	if len(lines) > maxEntries {
		lines = lines[:maxEntries]
	}
	return lines, nil
}

func loadCommands(dataDir string) ([]string, error) {
	lines, err := readLines(filepath.Join(dataDir, commandsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	if len(lines) > maxEntries {
		lines = lines[len(lines)-maxEntries:]
	}
	return lines, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func writeLines(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			file.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func reverse(s []string) []string {
	result := make([]string, len(s))
	for i, v := range s {
		result[len(s)-1-i] = v
	}
	return result
}
