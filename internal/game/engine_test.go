package game

import (
	"strings"
	"testing"
)

func snapshotFixture() AssociationSnapshot {
	return AssociationSnapshot{Number: 42, Hero: "Batman", Action: "jumps", Object: "rope"}
}

func decoyFixtures() []AssociationSnapshot {
	return []AssociationSnapshot{
		{Number: 1, Hero: "batman", Action: "sings", Object: "apple"},
		{Number: 2, Hero: "Elsa", Action: "skates", Object: "crayon"},
		{Number: 3, Hero: "Mario", Action: "runs", Object: "coin"},
		{Number: 4, Hero: "Luigi", Action: "flies", Object: "kite"},
	}
}

func TestMatchHAOChoiceSet(t *testing.T) {
	state := BuildState(TypeMatchHAO, snapshotFixture(), decoyFixtures(), nil)
	if state.MatchHAO == nil {
		t.Fatal("match_hao state not built")
	}
	options := state.MatchHAO.HeroOptions
	if len(options) != 4 {
		t.Fatalf("hero options = %v, want 4 entries", options)
	}
	batmanCount := 0
	seen := make(map[string]struct{})
	for _, option := range options {
		key := strings.ToLower(option)
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate option in %v", options)
		}
		seen[key] = struct{}{}
		if key == "batman" {
			batmanCount++
		}
	}
	if batmanCount != 1 {
		t.Fatalf("correct value appears %d times in %v", batmanCount, options)
	}
}

func TestMatchHAOFabricatesDecoyWhenDry(t *testing.T) {
	state := BuildState(TypeMatchHAO, snapshotFixture(), nil, nil)
	options := state.MatchHAO.HeroOptions
	if len(options) != 2 {
		t.Fatalf("options = %v, want correct value plus one fabricated decoy", options)
	}
	foundMarker := false
	for _, option := range options {
		if strings.HasSuffix(option, decoyMarker) {
			foundMarker = true
		}
	}
	if !foundMarker {
		t.Fatalf("no fabricated decoy in %v", options)
	}
}

func TestMatchHAOEvaluate(t *testing.T) {
	state := BuildState(TypeMatchHAO, snapshotFixture(), decoyFixtures(), nil)
	correct := Answer{Hero: " batman ", Action: "JUMPS", Object: "Rope"}
	if !Evaluate(TypeMatchHAO, state, correct) {
		t.Fatal("case-insensitive trimmed answer should be correct")
	}
	wrong := Answer{Hero: "Elsa", Action: "jumps", Object: "rope"}
	if Evaluate(TypeMatchHAO, state, wrong) {
		t.Fatal("wrong hero should fail")
	}
	partial := Answer{Hero: "Batman", Action: "jumps"}
	if Evaluate(TypeMatchHAO, state, partial) {
		t.Fatal("missing object should fail")
	}
}

func TestMemoryFlashState(t *testing.T) {
	state := BuildState(TypeMemoryFlash, snapshotFixture(), decoyFixtures(), map[string]any{"memorizationTime": float64(20)})
	flash := state.MemoryFlash
	if flash == nil {
		t.Fatal("memory_flash state not built")
	}
	if flash.MemorizeSeconds != 10 {
		t.Fatalf("memorize seconds = %d, want clamp to 10", flash.MemorizeSeconds)
	}
	switch flash.ChangedElement {
	case "hero", "action", "object":
	default:
		t.Fatalf("changed element = %q", flash.ChangedElement)
	}
	if strings.EqualFold(flash.DecoyValue, flash.OriginalValue) {
		t.Fatalf("decoy %q equals original %q", flash.DecoyValue, flash.OriginalValue)
	}
	// The modified scene differs from the snapshot only in the changed
	// element.
	scene := flash.ModifiedScene
	changed := 0
	if scene.Hero != "Batman" {
		changed++
	}
	if scene.Action != "jumps" {
		changed++
	}
	if scene.Object != "rope" {
		changed++
	}
	if changed != 1 {
		t.Fatalf("scene changed %d elements: %+v", changed, scene)
	}
}

func TestMemoryFlashEvaluateComparesElementName(t *testing.T) {
	state := State{
		Association: snapshotFixture(),
		MemoryFlash: &MemoryFlashState{ChangedElement: "hero", OriginalValue: "Batman", DecoyValue: "Elsa"},
	}
	if !Evaluate(TypeMemoryFlash, state, Answer{ChangedElement: "HERO"}) {
		t.Fatal("element name should match case-insensitively")
	}
	// Submitting the changed value rather than the element name is wrong.
	if Evaluate(TypeMemoryFlash, state, Answer{ChangedElement: "Elsa"}) {
		t.Fatal("element value must not match")
	}
}

func TestSpeedRecallEvaluate(t *testing.T) {
	state := State{Association: snapshotFixture()}
	if !Evaluate(TypeSpeedRecall, state, Answer{Recall: "I think BATMAN was there"}) {
		t.Fatal("recall containing the hero should be correct")
	}
	if !Evaluate(TypeSpeedRecall, state, Answer{Recall: "someone jumps somewhere"}) {
		t.Fatal("recall containing the action should be correct")
	}
	if Evaluate(TypeSpeedRecall, state, Answer{Recall: "no idea"}) {
		t.Fatal("unrelated recall should fail")
	}
	if Evaluate(TypeSpeedRecall, state, Answer{}) {
		t.Fatal("empty recall should fail")
	}
}

func TestUnscoredTypesAlwaysIncorrect(t *testing.T) {
	state := State{Association: snapshotFixture()}
	if Evaluate(TypeNumberStory, state, Answer{Hero: "Batman", Action: "jumps", Object: "rope"}) {
		t.Fatal("number_story has no validation rule")
	}
	if Evaluate(TypeAssociationDuel, state, Answer{Recall: "Batman"}) {
		t.Fatal("association_duel has no validation rule")
	}
}

func TestScore(t *testing.T) {
	zero := 0
	cases := []struct {
		name        string
		correct     bool
		difficulty  int
		timeSpentMs *int
		wantPoints  int
		wantXP      int
	}{
		{"correct fast", true, 1, &zero, 105, 10},
		{"incorrect no time", false, 2, nil, 50, 4},
		{"correct no time", true, 3, nil, 300, 30},
		{"difficulty floor", true, 0, nil, 100, 10},
	}
	for _, tc := range cases {
		points, xp := Score(tc.correct, tc.difficulty, tc.timeSpentMs)
		if points != tc.wantPoints || xp != tc.wantXP {
			t.Fatalf("%s: got (%d, %d), want (%d, %d)", tc.name, points, xp, tc.wantPoints, tc.wantXP)
		}
	}
}

func TestScoreIgnoresSlowTime(t *testing.T) {
	slow := 9000
	points, _ := Score(true, 1, &slow)
	if points != 100 {
		t.Fatalf("points = %d, want no bonus past 5s", points)
	}
}

func TestMemorizeSecondsDefaultsAndClamps(t *testing.T) {
	if got := memorizeSeconds(nil); got != 5 {
		t.Fatalf("default = %d, want 5", got)
	}
	if got := memorizeSeconds(map[string]any{"memorizationTime": float64(1)}); got != 3 {
		t.Fatalf("low clamp = %d, want 3", got)
	}
	if got := memorizeSeconds(map[string]any{"memorizationTime": float64(7)}); got != 7 {
		t.Fatalf("in range = %d, want 7", got)
	}
}
