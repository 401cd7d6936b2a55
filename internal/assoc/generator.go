package assoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"number-heroes/internal/db"
	"number-heroes/internal/llm"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrGenerationExhausted = errors.New("association generation attempts exhausted")
	ErrInvalidResponse     = errors.New("llm response is not a valid association")
)

// Completer is the slice of the llm client the generator needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const generatorSystemPrompt = `You invent mnemonic associations that help children memorize two-digit numbers.
An association is a vivid hero performing an action on an object.
Respond with ONLY valid JSON (no markdown, no code fences, no explanations):
{"hero": "...", "action": "...", "object": "...", "explanation": "..."}
Rules:
- hero, action and object are each one or two words, child-friendly
- the explanation says in one sentence how the scene encodes the number
- never reuse any of the forbidden words the user lists`

type Generator struct {
	repo     Repository
	llm      Completer
	attempts int
}

func NewGenerator(repo Repository, completer Completer, attempts int) *Generator {
	if attempts <= 0 {
		attempts = 5
	}
	return &Generator{repo: repo, llm: completer, attempts: attempts}
}

type generatedTriple struct {
	Hero        string `json:"hero"`
	Action      string `json:"action"`
	Object      string `json:"object"`
	Explanation string `json:"explanation"`
}

// Generate produces a novel association for the number and persists it as
// the new primary. Any collision of hero, action or object with a stored
// value, on any number, forces a retry with the colliding value added to
// the exclusion list.
func (g *Generator) Generate(ctx context.Context, number int) (*db.NumberAssociation, error) {
	existing, err := g.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	heroes := newWordSet()
	actions := newWordSet()
	objects := newWordSet()
	for _, row := range existing {
		heroes.add(row.Hero)
		actions.add(row.Action)
		objects.add(row.Object)
	}

	var lastErr error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		raw, err := g.llm.Complete(ctx, generatorSystemPrompt, buildUserPrompt(number, heroes, actions, objects))
		if err != nil {
			if errors.Is(err, llm.ErrEmptyResponse) {
				lastErr = ErrInvalidResponse
				continue
			}
			return nil, err
		}

		triple, err := parseTriple(raw)
		if err != nil {
			lastErr = err
			continue
		}

		collided := false
		if heroes.has(triple.Hero) {
			heroes.add(triple.Hero)
			collided = true
		}
		if actions.has(triple.Action) {
			actions.add(triple.Action)
			collided = true
		}
		if objects.has(triple.Object) {
			objects.add(triple.Object)
			collided = true
		}
		if collided {
			log.Printf("association collision number=%d attempt=%d hero=%q action=%q object=%q",
				number, attempt, triple.Hero, triple.Action, triple.Object)
			lastErr = fmt.Errorf("duplicate association values for number %d", number)
			continue
		}

		row := &db.NumberAssociation{
			Number:      number,
			Hero:        triple.Hero,
			Action:      triple.Action,
			Object:      triple.Object,
			Explanation: triple.Explanation,
		}
		if err := g.repo.SavePrimary(ctx, row); err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		log.Printf("association generated number=%d attempt=%d hero=%q", number, attempt, row.Hero)
		return row, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationExhausted, lastErr)
	}
	return nil, ErrGenerationExhausted
}

// GenerateMissing fills in primaries for numbers 0-99 that lack one,
// capped per invocation.
func (g *Generator) GenerateMissing(ctx context.Context, limit int, delay func()) (generated []int, failures map[int]error, err error) {
	missing, err := g.repo.MissingNumbers(ctx, 0, 99)
	if err != nil {
		return nil, nil, err
	}
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}
	failures = make(map[int]error)
	for i, number := range missing {
		if err := ctx.Err(); err != nil {
			return generated, failures, err
		}
		if _, err := g.Generate(ctx, number); err != nil {
			failures[number] = err
			continue
		}
		generated = append(generated, number)
		if delay != nil && i < len(missing)-1 {
			delay()
		}
	}
	return generated, failures, nil
}

func buildUserPrompt(number int, heroes, actions, objects *wordSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create an association for the number %d.\n", number)
	if words := heroes.list(); len(words) > 0 {
		fmt.Fprintf(&b, "Forbidden heroes: %s.\n", strings.Join(words, ", "))
	}
	if words := actions.list(); len(words) > 0 {
		fmt.Fprintf(&b, "Forbidden actions: %s.\n", strings.Join(words, ", "))
	}
	if words := objects.list(); len(words) > 0 {
		fmt.Fprintf(&b, "Forbidden objects: %s.\n", strings.Join(words, ", "))
	}
	return b.String()
}

func parseTriple(raw string) (generatedTriple, error) {
	var triple generatedTriple
	clean := llm.StripFences(raw)
	if clean == "" {
		return triple, ErrInvalidResponse
	}
	if err := json.Unmarshal([]byte(clean), &triple); err != nil {
		return triple, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	triple.Hero = strings.TrimSpace(triple.Hero)
	triple.Action = strings.TrimSpace(triple.Action)
	triple.Object = strings.TrimSpace(triple.Object)
	triple.Explanation = strings.TrimSpace(triple.Explanation)
	if triple.Hero == "" || triple.Action == "" || triple.Object == "" {
		return triple, ErrInvalidResponse
	}
	return triple, nil
}

// wordSet is a case-insensitive set that remembers insertion order for
// prompt building.
type wordSet struct {
	seen  map[string]struct{}
	words []string
}

func newWordSet() *wordSet {
	return &wordSet{seen: make(map[string]struct{})}
}

func (s *wordSet) add(word string) {
	key := strings.ToLower(strings.TrimSpace(word))
	if key == "" {
		return
	}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.words = append(s.words, strings.TrimSpace(word))
}

func (s *wordSet) has(word string) bool {
	_, ok := s.seen[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

func (s *wordSet) list() []string {
	return s.words
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
