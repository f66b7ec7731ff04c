package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"igreport/pkg/report"
)

// TimestampLayout is the time part of a saved report's file name
const TimestampLayout = "20060102-150405"

var extensions = map[string]string{
	report.FormatText: ".txt",
	report.FormatJSON: ".json",
	report.FormatYAML: ".yaml",
}

// Manager writes rendered reports into an output directory
type Manager struct {
	outputDir string
	saved     map[string][]string
	mu        sync.RWMutex
}

// NewManager creates the output directory and indexes reports already in it
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		saved:     make(map[string][]string),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles indexes <username>_<timestamp>.<ext> files
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if username, ok := parseFileName(entry.Name()); ok {
			m.saved[username] = append(m.saved[username], entry.Name())
		}
	}

	return nil
}

// FileName returns the name a report is saved under
func FileName(r *report.Report, format string) (string, error) {
	if r == nil || r.Self == nil {
		return "", report.ErrNoProfile
	}
	if format == "" {
		format = report.FormatText
	}
	ext, ok := extensions[format]
	if !ok {
		return "", fmt.Errorf("unknown report format %q", format)
	}
	return fmt.Sprintf("%s_%s%s", r.Self.Username, r.GeneratedAt.UTC().Format(TimestampLayout), ext), nil
}

func parseFileName(name string) (string, bool) {
	ext := filepath.Ext(name)
	known := false
	for _, e := range extensions {
		if e == ext {
			known = true
			break
		}
	}
	if !known {
		return "", false
	}

	stem := strings.TrimSuffix(name, ext)
	i := strings.LastIndex(stem, "_")
	if i <= 0 || len(stem)-i-1 != len(TimestampLayout) {
		return "", false
	}
	return stem[:i], true
}

// SaveReport renders r and writes it atomically. It returns the file path.
func (m *Manager) SaveReport(r *report.Report, format string) (string, error) {
	name, err := FileName(r, format)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, r, format); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	filename := filepath.Join(m.outputDir, name)
	if err := writeAtomic(filename, buf.Bytes()); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.saved[r.Self.Username] = append(m.saved[r.Self.Username], name)
	m.mu.Unlock()

	return filename, nil
}

func writeAtomic(filename string, data []byte) error {
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write report: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// Reports lists the saved report files for username, oldest first
func (m *Manager) Reports(username string) []string {
	m.mu.RLock()
	names := append([]string(nil), m.saved[username]...)
	m.mu.RUnlock()

	// Names share a prefix, so the timestamp orders them
	sort.Strings(names)
	return names
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// Count returns the number of indexed reports
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, names := range m.saved {
		n += len(names)
	}
	return n
}
