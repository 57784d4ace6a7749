package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// JSONL writes one JSON object per line to a file.
type JSONL struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewJSONL opens (creating if needed) the records file at path.
func NewJSONL(path string) (*JSONL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create records directory: %w", err)
	}

	file, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	return &JSONL{path: path, file: file}, nil
}

func openAppend(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	return file, nil
}

func (s *JSONL) Append(ctx context.Context, r Record) error {
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return os.ErrClosed
	}
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// ReadAll returns records in file order. Lines that do not parse are
// logged and skipped.
func (s *JSONL) ReadAll(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			log.Printf("Skipping bad record at %s:%d: %v", s.path, lineNo, err)
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read records file: %w", err)
	}
	return records, nil
}

// Clear truncates the records file in place. Other handles opened with
// O_APPEND keep writing to the same file.
func (s *JSONL) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return os.ErrClosed
	}
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate records file: %w", err)
	}
	return nil
}

func (s *JSONL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
