// Package model defines shared data structures.
package model

import "time"

// Config defines reader settings.
type Config struct {
	WPM           int
	Rates         []int
	CountdownStep time.Duration
	Immersive     bool
	Source        string
}

// StatsConfig defines filters for reading history.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// ReadingStats captures one reading, finished or interrupted.
type ReadingStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Source     string
	WordsTotal int
	WordsRead  int
	WPM        int
	DurationMs int64
	Completed  bool
}

// ReadingAggregate summarizes a stored reading for reporting.
type ReadingAggregate struct {
	ReadingID  int64
	EndedAt    time.Time
	Source     string
	WordsTotal int
	WordsRead  int
	WPM        int
	DurationMs int64
	Completed  bool
}
