package assoc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"number-heroes/internal/db"
)

var ErrScanInProgress = errors.New("duplicate scan already running")

// Duplicate describes one value shared by several numbers' primary
// associations.
type Duplicate struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Numbers []int  `json:"numbers"`
}

// ScanReport summarizes one check-duplicates run. Duplicates holds the
// first pass's findings only; later passes drive regeneration silently.
type ScanReport struct {
	Duplicates  []Duplicate `json:"duplicates"`
	Regenerated []int       `json:"regenerated"`
	Message     string      `json:"message"`
}

type regenerator interface {
	Generate(ctx context.Context, number int) (*db.NumberAssociation, error)
}

type Scanner struct {
	mu      sync.Mutex
	running bool

	repo    Repository
	gen     regenerator
	passCap int
	delay   time.Duration
}

func NewScanner(repo Repository, gen regenerator, passCap int, delay time.Duration) *Scanner {
	if passCap <= 0 {
		passCap = 10
	}
	return &Scanner{repo: repo, gen: gen, passCap: passCap, delay: delay}
}

// Scan detects cross-number reuse of hero/action/object values among
// primary associations and regenerates every affected number, repeating
// until a pass comes up clean or the pass cap is hit. Only one scan may
// run at a time.
func (s *Scanner) Scan(ctx context.Context) (*ScanReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	report := &ScanReport{}
	regenerated := make(map[int]struct{})

	pass := 0
	for pass = 1; pass <= s.passCap; pass++ {
		primaries, err := s.repo.Primary(ctx)
		if err != nil {
			return nil, err
		}
		duplicates := findDuplicates(primaries)
		if len(duplicates) == 0 {
			break
		}
		if pass == 1 {
			report.Duplicates = duplicates
		}

		flagged := flaggedNumbers(duplicates)
		log.Printf("duplicate scan pass=%d groups=%d numbers=%v", pass, len(duplicates), flagged)
		for i, number := range flagged {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if _, err := s.gen.Generate(ctx, number); err != nil {
				log.Printf("regeneration failed number=%d: %v", number, err)
				continue
			}
			regenerated[number] = struct{}{}
			if s.delay > 0 && i < len(flagged)-1 {
				select {
				case <-time.After(s.delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}
	}

	for number := range regenerated {
		report.Regenerated = append(report.Regenerated, number)
	}
	sort.Ints(report.Regenerated)
	if len(report.Duplicates) == 0 {
		report.Message = "no duplicates found"
	} else {
		report.Message = fmt.Sprintf("found %d duplicate groups, regenerated %d numbers in %d passes",
			len(report.Duplicates), len(report.Regenerated), pass-1)
	}
	return report, nil
}

// findDuplicates groups primaries by hero, action and object value
// (case-insensitive); any group with more than one member is reported.
func findDuplicates(primaries []db.NumberAssociation) []Duplicate {
	var out []Duplicate
	fields := []struct {
		name  string
		value func(db.NumberAssociation) string
	}{
		{"hero", func(a db.NumberAssociation) string { return a.Hero }},
		{"action", func(a db.NumberAssociation) string { return a.Action }},
		{"object", func(a db.NumberAssociation) string { return a.Object }},
	}
	for _, field := range fields {
		groups := make(map[string][]int)
		display := make(map[string]string)
		for _, row := range primaries {
			value := strings.TrimSpace(field.value(row))
			key := strings.ToLower(value)
			if key == "" {
				continue
			}
			groups[key] = append(groups[key], row.Number)
			if _, ok := display[key]; !ok {
				display[key] = value
			}
		}
		keys := make([]string, 0, len(groups))
		for key := range groups {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			numbers := groups[key]
			if len(numbers) < 2 {
				continue
			}
			sort.Ints(numbers)
			out = append(out, Duplicate{Field: field.name, Value: display[key], Numbers: numbers})
		}
	}
	return out
}

// flaggedNumbers deduplicates every number in every duplicate group.
func flaggedNumbers(duplicates []Duplicate) []int {
	set := make(map[int]struct{})
	for _, dup := range duplicates {
		for _, number := range dup.Numbers {
			set[number] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for number := range set {
		out = append(out, number)
	}
	sort.Ints(out)
	return out
}
