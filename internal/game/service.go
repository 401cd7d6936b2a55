package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"number-heroes/internal/assoc"
	"number-heroes/internal/db"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrNotFound      = errors.New("game not found")
	ErrInvalidType   = errors.New("unknown game type")
	ErrGameNotActive = errors.New("game is not in progress")
	ErrMissingState  = errors.New("missing association data in game state")
)

// Repository is the game row persistence surface.
type Repository interface {
	Create(ctx context.Context, game *db.Game) error
	Get(ctx context.Context, id uuid.UUID) (*db.Game, error)
	Save(ctx context.Context, game *db.Game) error
}

type Service struct {
	games  Repository
	assocs assoc.Repository
}

func NewService(games Repository, assocs assoc.Repository) *Service {
	return &Service{games: games, assocs: assocs}
}

type StartParams struct {
	Type       string
	Number     *int
	PlayerID   *string
	Difficulty int
	Settings   map[string]any
}

// Attempt is one submitted answer with its outcome.
type Attempt struct {
	Answer      Answer    `json:"answer"`
	Correct     bool      `json:"correct"`
	Points      int       `json:"points"`
	XP          int       `json:"xp"`
	TimeSpentMs *int      `json:"timeSpentMs,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Summary struct {
	Correct     bool `json:"correct"`
	Points      int  `json:"points"`
	XP          int  `json:"xp"`
	TimeSpentMs *int `json:"timeSpentMs,omitempty"`
}

// GameResult is the jsonb result column layout.
type GameResult struct {
	Attempts []Attempt `json:"attempts"`
	Summary  *Summary  `json:"summary,omitempty"`
}

type FeedbackEntry struct {
	Message   string    `json:"message"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Start resolves an association, builds the type-specific puzzle state
// and creates the game row in progress.
func (s *Service) Start(ctx context.Context, params StartParams) (*db.Game, error) {
	if !ValidType(params.Type) {
		return nil, ErrInvalidType
	}

	var chosen *db.NumberAssociation
	if params.Number != nil {
		row, err := s.assocs.BestForNumber(ctx, *params.Number)
		if err != nil {
			return nil, err
		}
		chosen = row
	} else {
		sample, err := s.assocs.PrimarySample(ctx, choicePoolLimit)
		if err != nil {
			return nil, err
		}
		if len(sample) == 0 {
			return nil, assoc.ErrNotFound
		}
		chosen = &sample[rand.Intn(len(sample))]
	}

	others, err := s.decoyPool(ctx, chosen.Number)
	if err != nil {
		return nil, err
	}

	snapshot := AssociationSnapshot{
		Number:      chosen.Number,
		Hero:        chosen.Hero,
		Action:      chosen.Action,
		Object:      chosen.Object,
		Explanation: chosen.Explanation,
	}
	difficulty := params.Difficulty
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > 5 {
		difficulty = 5
	}

	state := BuildState(params.Type, snapshot, others, params.Settings)
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	resultJSON, err := json.Marshal(GameResult{Attempts: []Attempt{}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode game result: %w", err)
	}
	var settingsJSON []byte
	if params.Settings != nil {
		settingsJSON, err = json.Marshal(params.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode game settings: %w", err)
		}
	}

	now := time.Now().UTC()
	row := &db.Game{
		ID:         uuid.New(),
		Type:       params.Type,
		Number:     chosen.Number,
		PlayerID:   params.PlayerID,
		Status:     StatusInProgress,
		Difficulty: difficulty,
		Settings:   datatypes.JSON(settingsJSON),
		State:      datatypes.JSON(stateJSON),
		Result:     datatypes.JSON(resultJSON),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.games.Create(ctx, row); err != nil {
		return nil, err
	}
	log.Printf("game started id=%s type=%s number=%d", row.ID, row.Type, row.Number)
	return row, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*db.Game, error) {
	return s.games.Get(ctx, id)
}

// ResultView is the read model served by the result endpoint.
type ResultView struct {
	ID     uuid.UUID       `json:"id"`
	Status string          `json:"status"`
	Points int             `json:"points"`
	XP     int             `json:"xp"`
	Result json.RawMessage `json:"result"`
}

func (s *Service) Result(ctx context.Context, id uuid.UUID) (*ResultView, error) {
	row, err := s.games.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ResultView{
		ID:     row.ID,
		Status: row.Status,
		Points: row.Points,
		XP:     row.XP,
		Result: json.RawMessage(row.Result),
	}, nil
}

// SubmitAnswer evaluates one answer against an in-progress game. The game
// is single-shot: any answer moves it to a terminal status.
func (s *Service) SubmitAnswer(ctx context.Context, id uuid.UUID, answer Answer, timeSpentMs *int) (*db.Game, error) {
	row, err := s.games.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != StatusInProgress {
		return nil, ErrGameNotActive
	}

	var state State
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}
	if state.Association.Hero == "" && state.Association.Action == "" && state.Association.Object == "" {
		return nil, ErrMissingState
	}

	correct := Evaluate(row.Type, state, answer)
	points, xp := Score(correct, row.Difficulty, timeSpentMs)

	switch row.Type {
	case TypeMemoryFlash:
		if state.MemoryFlash != nil {
			state.MemoryFlash.Revealed = true
		}
	case TypeSpeedRecall:
		if state.SpeedRecall != nil {
			state.SpeedRecall.Attempts++
		}
	}

	var result GameResult
	if len(row.Result) > 0 {
		if err := json.Unmarshal(row.Result, &result); err != nil {
			return nil, fmt.Errorf("failed to decode game result: %w", err)
		}
	}
	now := time.Now().UTC()
	result.Attempts = append(result.Attempts, Attempt{
		Answer:      answer,
		Correct:     correct,
		Points:      points,
		XP:          xp,
		TimeSpentMs: timeSpentMs,
		SubmittedAt: now,
	})
	result.Summary = &Summary{Correct: correct, Points: points, XP: xp, TimeSpentMs: timeSpentMs}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game result: %w", err)
	}

	row.State = datatypes.JSON(stateJSON)
	row.Result = datatypes.JSON(resultJSON)
	row.Points = points
	row.XP = xp
	if correct {
		row.Status = StatusCompleted
	} else {
		row.Status = StatusFailed
	}
	row.CompletedAt = &now
	row.UpdatedAt = now
	if err := s.games.Save(ctx, row); err != nil {
		return nil, err
	}
	log.Printf("answer submitted game=%s correct=%t points=%d", row.ID, correct, points)
	return row, nil
}

// SubmitFeedback appends a feedback entry. It is valid in any status.
func (s *Service) SubmitFeedback(ctx context.Context, id uuid.UUID, message string, rating *int) (*db.Game, error) {
	row, err := s.games.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var feedback []FeedbackEntry
	if len(row.Feedback) > 0 {
		if err := json.Unmarshal(row.Feedback, &feedback); err != nil {
			return nil, fmt.Errorf("failed to decode game feedback: %w", err)
		}
	}
	feedback = append(feedback, FeedbackEntry{
		Message:   message,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	})
	feedbackJSON, err := json.Marshal(feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game feedback: %w", err)
	}
	row.Feedback = datatypes.JSON(feedbackJSON)
	row.UpdatedAt = time.Now().UTC()
	if err := s.games.Save(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// decoyPool gathers primary associations for other numbers.
func (s *Service) decoyPool(ctx context.Context, exclude int) ([]AssociationSnapshot, error) {
	primaries, err := s.assocs.Primary(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AssociationSnapshot, 0, len(primaries))
	for _, row := range primaries {
		if row.Number == exclude {
			continue
		}
		out = append(out, AssociationSnapshot{
			Number: row.Number,
			Hero:   row.Hero,
			Action: row.Action,
			Object: row.Object,
		})
	}
	return out, nil
}
