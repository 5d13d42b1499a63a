package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session records one batch generation run: a JSONL manifest for machines
// plus a plain log for humans, both under <outputDir>/sessions/<id>/.
type Session struct {
	ID           string // session ID (timestamp: 2025-01-15-103045)
	OutputDir    string // fixture output root
	SessionDir   string // full path to the session directory
	ManifestFile *os.File
	Log          *Logger
	stats        SessionStats
}

// SessionStats tracks counts for a generation session.
type SessionStats struct {
	Total        int
	Generated    int
	Failed       int
	BytesWritten int64
}

// SessionEvent is a single line in the session manifest.
type SessionEvent struct {
	Event string `json:"event"`
	Ts    string `json:"ts"`

	// Per-fixture fields
	Path       string `json:"path,omitempty"`
	Format     string `json:"format,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	TargetSize int64  `json:"target_size,omitempty"`
	BaseSize   int64  `json:"base_size,omitempty"`
	Padding    int64  `json:"padding,omitempty"`
	Quality    int    `json:"quality,omitempty"`
	Hash       string `json:"hash,omitempty"`

	// Error fields (for failed fixtures)
	Error           string `json:"error,omitempty"`
	ErrorCategory   string `json:"error_category,omitempty"`
	ErrorSuggestion string `json:"error_suggestion,omitempty"`

	// Session start/end fields
	Manifest      string `json:"manifest,omitempty"`
	TotalFixtures int    `json:"total_fixtures,omitempty"`
	Generated     int    `json:"generated,omitempty"`
	Failed        int    `json:"failed,omitempty"`
	BytesWritten  int64  `json:"bytes_written,omitempty"`
}

// NewSession creates the session directory with its manifest and log files.
func NewSession(outputDir string) (*Session, error) {
	sessionID := time.Now().Format("2006-01-02-150405")
	sessionDir := filepath.Join(outputDir, "sessions", sessionID)

	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	manifestPath := filepath.Join(sessionDir, "manifest.jsonl")
	manifestFile, err := os.OpenFile(manifestPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest file: %w", err)
	}

	logger, err := NewLogger(filepath.Join(sessionDir, "batch.log"))
	if err != nil {
		manifestFile.Close()
		return nil, fmt.Errorf("failed to create session log: %w", err)
	}

	return &Session{
		ID:           sessionID,
		OutputDir:    outputDir,
		SessionDir:   sessionDir,
		ManifestFile: manifestFile,
		Log:          logger,
	}, nil
}

// LogStart writes the session start event.
func (s *Session) LogStart(manifestPath string, totalFixtures int) error {
	s.stats.Total = totalFixtures
	s.Log.Log("session %s: generating %d fixtures from %s", s.ID, totalFixtures, manifestPath)

	return s.writeEvent(SessionEvent{
		Event:         "session_start",
		Ts:            time.Now().UTC().Format(time.RFC3339),
		Manifest:      manifestPath,
		TotalFixtures: totalFixtures,
	})
}

// LogGenerated records a successfully written fixture.
func (s *Session) LogGenerated(path string, req Request, res *Result, hash string) error {
	s.stats.Generated++
	s.stats.BytesWritten += req.TargetSize
	s.Log.Log("generated %s (%dx%d %s, quality %d, %d+%d bytes)",
		path, req.Width, req.Height, req.Format, res.Quality, res.BaseSize, res.Padding)

	return s.writeEvent(SessionEvent{
		Event:      "generated",
		Ts:         time.Now().UTC().Format(time.RFC3339),
		Path:       path,
		Format:     string(req.Format),
		Width:      req.Width,
		Height:     req.Height,
		TargetSize: req.TargetSize,
		BaseSize:   res.BaseSize,
		Padding:    res.Padding,
		Quality:    res.Quality,
		Hash:       hash,
	})
}

// LogFailed records a fixture that could not be generated. Categorized
// errors carry their category and suggestion into the manifest.
func (s *Session) LogFailed(path string, req Request, genErr error) error {
	s.stats.Failed++
	s.Log.Log("failed %s: %v", path, genErr)

	event := SessionEvent{
		Event:      "failed",
		Ts:         time.Now().UTC().Format(time.RFC3339),
		Path:       path,
		Format:     string(req.Format),
		Width:      req.Width,
		Height:     req.Height,
		TargetSize: req.TargetSize,
		Error:      genErr.Error(),
	}
	var ge *GenerateError
	if errors.As(genErr, &ge) {
		event.Error = ge.Err.Error()
		event.ErrorCategory = string(ge.Category)
		event.ErrorSuggestion = ge.Suggestion
	}

	return s.writeEvent(event)
}

// LogEnd writes the session end event with final counts.
func (s *Session) LogEnd() error {
	s.Log.Log("session %s: %d generated, %d failed, %d bytes written",
		s.ID, s.stats.Generated, s.stats.Failed, s.stats.BytesWritten)

	return s.writeEvent(SessionEvent{
		Event:         "session_end",
		Ts:            time.Now().UTC().Format(time.RFC3339),
		TotalFixtures: s.stats.Total,
		Generated:     s.stats.Generated,
		Failed:        s.stats.Failed,
		BytesWritten:  s.stats.BytesWritten,
	})
}

// Stats returns the current session statistics.
func (s *Session) Stats() SessionStats {
	return s.stats
}

// Close closes the manifest and log files.
func (s *Session) Close() error {
	var first error
	if s.ManifestFile != nil {
		first = s.ManifestFile.Close()
	}
	if s.Log != nil {
		if err := s.Log.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// writeEvent appends one JSON line to the manifest.
func (s *Session) writeEvent(event SessionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := s.ManifestFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write manifest event: %w", err)
	}
	return nil
}
