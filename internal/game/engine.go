package game

import (
	"math"
	"math/rand"
	"strings"
)

// Game types.
const (
	TypeMatchHAO        = "match_hao"
	TypeMemoryFlash     = "memory_flash"
	TypeNumberStory     = "number_story"
	TypeSpeedRecall     = "speed_recall"
	TypeAssociationDuel = "association_duel"
)

// Statuses. StatusPending exists in the lifecycle enum but Start goes
// straight to in_progress.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

func ValidType(gameType string) bool {
	switch gameType {
	case TypeMatchHAO, TypeMemoryFlash, TypeNumberStory, TypeSpeedRecall, TypeAssociationDuel:
		return true
	}
	return false
}

// AssociationSnapshot is the denormalized copy of the association a game
// was started with. Later edits to the canonical row do not affect an
// in-flight game.
type AssociationSnapshot struct {
	Number      int    `json:"number"`
	Hero        string `json:"hero"`
	Action      string `json:"action"`
	Object      string `json:"object"`
	Explanation string `json:"explanation,omitempty"`
}

type SceneValues struct {
	Hero   string `json:"hero"`
	Action string `json:"action"`
	Object string `json:"object"`
}

type MatchHAOState struct {
	HeroOptions   []string `json:"heroOptions"`
	ActionOptions []string `json:"actionOptions"`
	ObjectOptions []string `json:"objectOptions"`
}

type MemoryFlashState struct {
	ChangedElement  string      `json:"changedElement"`
	OriginalValue   string      `json:"originalValue"`
	DecoyValue      string      `json:"decoyValue"`
	MemorizeSeconds int         `json:"memorizeSeconds"`
	ModifiedScene   SceneValues `json:"modifiedScene"`
	Revealed        bool        `json:"revealed"`
}

type SpeedRecallState struct {
	Prompt   string `json:"prompt"`
	Attempts int    `json:"attempts"`
}

// State is the per-game puzzle payload stored in the jsonb state column.
// Exactly one of the per-type variants is set, keyed by the game type.
type State struct {
	Association AssociationSnapshot `json:"association"`
	MatchHAO    *MatchHAOState      `json:"matchHao,omitempty"`
	MemoryFlash *MemoryFlashState   `json:"memoryFlash,omitempty"`
	SpeedRecall *SpeedRecallState   `json:"speedRecall,omitempty"`
}

// Answer carries every field any game type reads; unused fields stay
// empty.
type Answer struct {
	Hero           string `json:"hero,omitempty"`
	Action         string `json:"action,omitempty"`
	Object         string `json:"object,omitempty"`
	ChangedElement string `json:"changedElement,omitempty"`
	Recall         string `json:"recall,omitempty"`
}

const (
	minMemorizeSeconds     = 3
	maxMemorizeSeconds     = 10
	defaultMemorizeSeconds = 5
	decoyMarker            = " (alt)"
	maxDecoys              = 3
	choicePoolLimit        = 50
)

var sceneElements = []string{"hero", "action", "object"}

// BuildState constructs the initial puzzle state for a game type.
// others supplies decoy material from the rest of the association pool.
func BuildState(gameType string, snapshot AssociationSnapshot, others []AssociationSnapshot, settings map[string]any) State {
	state := State{Association: snapshot}
	switch gameType {
	case TypeMatchHAO:
		state.MatchHAO = &MatchHAOState{
			HeroOptions:   choiceSet(snapshot.Hero, pluck(others, "hero")),
			ActionOptions: choiceSet(snapshot.Action, pluck(others, "action")),
			ObjectOptions: choiceSet(snapshot.Object, pluck(others, "object")),
		}
	case TypeMemoryFlash:
		element := sceneElements[rand.Intn(len(sceneElements))]
		original := elementValue(snapshot, element)
		decoy := pickDecoy(original, pluck(others, element))
		scene := SceneValues{Hero: snapshot.Hero, Action: snapshot.Action, Object: snapshot.Object}
		switch element {
		case "hero":
			scene.Hero = decoy
		case "action":
			scene.Action = decoy
		case "object":
			scene.Object = decoy
		}
		state.MemoryFlash = &MemoryFlashState{
			ChangedElement:  element,
			OriginalValue:   original,
			DecoyValue:      decoy,
			MemorizeSeconds: memorizeSeconds(settings),
			ModifiedScene:   scene,
		}
	case TypeSpeedRecall:
		state.SpeedRecall = &SpeedRecallState{
			Prompt: "Who is the hero of this number, what do they do, and with what? Type everything you remember!",
		}
	}
	return state
}

// Evaluate applies the game type's correctness rule. Types without a rule
// treat every answer as incorrect.
func Evaluate(gameType string, state State, answer Answer) bool {
	switch gameType {
	case TypeMatchHAO:
		return equalFold(answer.Hero, state.Association.Hero) &&
			equalFold(answer.Action, state.Association.Action) &&
			equalFold(answer.Object, state.Association.Object)
	case TypeMemoryFlash:
		if state.MemoryFlash == nil {
			return false
		}
		// Compares against the element name ("hero"/"action"/"object"),
		// not the element's value.
		return equalFold(answer.ChangedElement, state.MemoryFlash.ChangedElement)
	case TypeSpeedRecall:
		recall := strings.ToLower(strings.TrimSpace(answer.Recall))
		if recall == "" {
			return false
		}
		return strings.Contains(recall, strings.ToLower(state.Association.Hero)) ||
			strings.Contains(recall, strings.ToLower(state.Association.Action)) ||
			strings.Contains(recall, strings.ToLower(state.Association.Object))
	default:
		return false
	}
}

// Score computes points and xp for one answer. The time bonus only
// applies when a time was reported.
func Score(correct bool, difficulty int, timeSpentMs *int) (points, xp int) {
	basePoints, baseXP := 25.0, 2.0
	if correct {
		basePoints, baseXP = 100.0, 10.0
	}
	bonus := 0.0
	if timeSpentMs != nil {
		bonus = math.Max(0, float64(5000-*timeSpentMs)) / 1000
	}
	multiplier := float64(difficulty)
	if multiplier < 1 {
		multiplier = 1
	}
	points = int(math.Round((basePoints + bonus) * multiplier))
	xp = int(math.Round(baseXP * multiplier))
	if points < 0 {
		points = 0
	}
	if xp < 0 {
		xp = 0
	}
	return points, xp
}

// choiceSet mixes the correct value with up to three distinct decoys and
// shuffles the result.
func choiceSet(correct string, candidates []string) []string {
	options := append([]string{correct}, decoys(correct, candidates, maxDecoys)...)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// decoys picks distinct candidate values that differ from the correct one
// (case-insensitively). With no usable candidate one is fabricated from
// the correct value.
func decoys(correct string, candidates []string, limit int) []string {
	seen := map[string]struct{}{strings.ToLower(strings.TrimSpace(correct)): {}}
	var pool []string
	for _, candidate := range candidates {
		value := strings.TrimSpace(candidate)
		key := strings.ToLower(value)
		if value == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pool = append(pool, value)
	}
	if len(pool) == 0 {
		return []string{correct + decoyMarker}
	}
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

func pickDecoy(correct string, candidates []string) string {
	picked := decoys(correct, candidates, 1)
	return picked[0]
}

func pluck(snapshots []AssociationSnapshot, element string) []string {
	out := make([]string, 0, len(snapshots))
	for _, snapshot := range snapshots {
		out = append(out, elementValue(snapshot, element))
	}
	return out
}

func elementValue(snapshot AssociationSnapshot, element string) string {
	switch element {
	case "hero":
		return snapshot.Hero
	case "action":
		return snapshot.Action
	case "object":
		return snapshot.Object
	}
	return ""
}

func memorizeSeconds(settings map[string]any) int {
	seconds := defaultMemorizeSeconds
	if settings != nil {
		if raw, ok := settings["memorizationTime"]; ok {
			if value, ok := raw.(float64); ok {
				seconds = int(value)
			}
		}
	}
	if seconds < minMemorizeSeconds {
		seconds = minMemorizeSeconds
	}
	if seconds > maxMemorizeSeconds {
		seconds = maxMemorizeSeconds
	}
	return seconds
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
