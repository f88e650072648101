// Package chat records the dispatch transcript: every prompt handed to the
// chat surface is appended to a per-run JSONL history file under the
// workspace state directory.
package chat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Entry is one dispatched prompt in the transcript.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	URI       string    `json:"uri"`
	Line      int       `json:"line"`
	TaskText  string    `json:"task_text"`
	Strategy  string    `json:"strategy"`
	Delivery  string    `json:"delivery"`
	Prompt    string    `json:"prompt"`
}

// Session appends transcript entries for one tasklens run.
type Session struct {
	historyFile string
}

// NewSession creates a session writing to a timestamped history file.
func NewSession(stateDir string) *Session {
	timestamp := time.Now().Format("2006-01-02-1504")
	return &Session{
		historyFile: filepath.Join(stateDir, "history", fmt.Sprintf("%s.jsonl", timestamp)),
	}
}

// Record appends one entry, assigning its id and timestamp.
func (s *Session) Record(entry Entry) error {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now()

	if err := os.MkdirAll(filepath.Dir(s.historyFile), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(s.historyFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// Entries reads the session's transcript back, oldest first. Missing file
// means no entries yet.
func (s *Session) Entries() ([]Entry, error) {
	f, err := os.Open(s.historyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			// A torn write at the tail is skipped, not fatal.
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return entries, nil
}
