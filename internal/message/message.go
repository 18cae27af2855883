// Package message assigns commit messages to plan slots. Message identity is
// reproducible independently of the distribution strategy: every slot is
// keyed by its own derived seed, so changing the strategy never reshuffles
// messages for the days that remain.
package message

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/verdant-cli/verdant/internal/plan"
	"github.com/verdant-cli/verdant/internal/rng"
)

// Source produces one commit message per (day, slot) pair.
type Source interface {
	Message(date time.Time, slot int) (string, error)
}

// CorpusSource picks messages from a fixed corpus, reseeding per slot so the
// same (baseSeed, date, slot) always yields the same message.
type CorpusSource struct {
	corpus   []string
	baseSeed string
}

// NewSource builds a CorpusSource for a named style. When corpusPath is
// non-empty the file (one message per line, blank lines and #-comments
// skipped) replaces the built-in style corpus.
func NewSource(style, corpusPath, baseSeed string) (*CorpusSource, error) {
	var corpus []string
	if corpusPath != "" {
		var err error
		corpus, err = readCorpusFile(corpusPath)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		corpus, ok = styles[style]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
		}
	}
	return &CorpusSource{corpus: corpus, baseSeed: baseSeed}, nil
}

// Message returns the message for a slot. The per-slot seed is
// "<baseSeed>-<ISO date>-<slot>".
func (s *CorpusSource) Message(date time.Time, slot int) (string, error) {
	if len(s.corpus) == 0 {
		return "", ErrEmptyCorpus
	}
	seed := fmt.Sprintf("%s-%s-%d", s.baseSeed, date.Format("2006-01-02"), slot)
	r := rng.New(seed)
	return s.corpus[r.IntN(0, len(s.corpus))], nil
}

// Fallback is the deterministic substitute used when a source fails for a
// slot. slot is zero-based; the message is one-based.
func Fallback(slot int) string {
	return fmt.Sprintf("Update %d", slot+1)
}

// Populate fills every day's message list from src, in slot order. Source
// failures are never fatal: the failing slot gets Fallback and population
// continues. Returns the number of slots that fell back.
func Populate(p *plan.Plan, src Source) int {
	fallbacks := 0
	for i := range p.Days {
		day := &p.Days[i]
		day.Messages = make([]string, day.Count)
		for slot := 0; slot < day.Count; slot++ {
			msg, err := src.Message(day.Date, slot)
			if err != nil || msg == "" {
				msg = Fallback(slot)
				fallbacks++
			}
			day.Messages[slot] = msg
		}
	}
	return fallbacks
}

// Styles returns the built-in style names, for CLI help and validation.
func Styles() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	return names
}

func readCorpusFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, path)
	}
	return lines, nil
}
