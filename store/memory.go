package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process line store, used for dry runs and tests
type Memory struct {
	mu    sync.Mutex
	lines []LineRecord
	runs  []RunSummary
}

// NewMemory creates a memory store holding a copy of lines in seq order
func NewMemory(lines []LineRecord) *Memory {
	cp := make([]LineRecord, len(lines))
	copy(cp, lines)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Seq < cp[j].Seq })
	return &Memory{lines: cp}
}

// Lines returns a copy of all lines in seq order
func (m *Memory) Lines(_ context.Context) ([]LineRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LineRecord, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

// Publish applies updates only if the resulting ids are unique
func (m *Memory) Publish(_ context.Context, run Run, updates []LineUpdate) error {
	if err := checkUnique(updates); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]LineRecord, len(m.lines))
	copy(next, m.lines)
	pos := m.positions()
	for _, u := range updates {
		i, ok := pos[u.Seq]
		if !ok {
			return fmt.Errorf("%w: seq %d", ErrUnknownLine, u.Seq)
		}
		next[i].ID = u.ID
		next[i].Description = u.Description
	}
	seen := make(map[string]int64, len(next))
	for _, l := range next {
		if prev, ok := seen[l.ID]; ok {
			return fmt.Errorf("%w: %q for lines %d and %d", ErrDuplicateID, l.ID, prev, l.Seq)
		}
		seen[l.ID] = l.Seq
	}

	m.lines = next
	m.runs = append(m.runs, RunSummary{ID: run.ID, StartedAt: run.StartedAt, Lines: len(updates)})
	return nil
}

// PublishModes applies mode changes
func (m *Memory) PublishModes(_ context.Context, changes []ModeChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos := m.positions()
	for _, c := range changes {
		if _, ok := pos[c.Seq]; !ok {
			return fmt.Errorf("%w: seq %d", ErrUnknownLine, c.Seq)
		}
	}
	for _, c := range changes {
		i := pos[c.Seq]
		m.lines[i].Mode = c.Mode
		m.lines[i].Vehicle = c.Vehicle
	}
	return nil
}

// Runs returns the recorded rename runs, oldest first
func (m *Memory) Runs(_ context.Context) ([]RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RunSummary, len(m.runs))
	copy(out, m.runs)
	return out, nil
}

// Close is a no-op
func (m *Memory) Close() error { return nil }

func (m *Memory) positions() map[int64]int {
	pos := make(map[int64]int, len(m.lines))
	for i, l := range m.lines {
		pos[l.Seq] = i
	}
	return pos
}
