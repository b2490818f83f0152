package dice

import (
	"errors"
	"reflect"
	"testing"
)

func evaluate(t *testing.T, expr string, faces ...int) *Outcome {
	t.Helper()
	out, err := NewRoller(NewSequenceSource(faces...)).Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate(%q) error = %v", expr, err)
	}
	return out
}

func TestEvaluate_KeepHighest(t *testing.T) {
	out := evaluate(t, "4d6kh3+2", 5, 3, 1, 4)

	if out.Total != 14 {
		t.Errorf("Total = %d, want 14", out.Total)
	}
	g := out.Groups()[0]
	if got := g.Values(); !reflect.DeepEqual(got, []int{5, 3, 1, 4}) {
		t.Errorf("Values() = %v", got)
	}
	if got := g.Kept(); !reflect.DeepEqual(got, []int{5, 3, 4}) {
		t.Errorf("Kept() = %v", got)
	}
	if want := "4d6kh3 (5, 3, ~~1~~, 4) + 2 = `14`"; out.Breakdown != want {
		t.Errorf("Breakdown = %q, want %q", out.Breakdown, want)
	}
}

func TestEvaluate_TiesKeepEarliest(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		faces       []int
		wantDropped []bool
		wantTotal   int
	}{
		{"keep highest", "3d6kh1", []int{6, 6, 3}, []bool{false, true, true}, 6},
		{"drop highest", "3d6dh1", []int{6, 6, 3}, []bool{false, true, false}, 9},
		{"drop lowest", "4d6dl1", []int{2, 2, 5, 6}, []bool{false, true, false, false}, 13},
		{"keep lowest", "2d20kl1", []int{15, 7}, []bool{true, false}, 7},
		{"keep lowest tie", "3d8kl2", []int{4, 4, 4}, []bool{false, false, true}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evaluate(t, tt.expr, tt.faces...)
			g := out.Groups()[0]
			for i, d := range g.Dice {
				if d.Dropped != tt.wantDropped[i] {
					t.Errorf("die %d dropped = %v, want %v", i, d.Dropped, tt.wantDropped[i])
				}
			}
			if out.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", out.Total, tt.wantTotal)
			}
		})
	}
}

func TestEvaluate_ModifiersApplyLeftToRight(t *testing.T) {
	out := evaluate(t, "4d6dl1kh1", 1, 4, 4, 2)

	g := out.Groups()[0]
	if got := g.Kept(); !reflect.DeepEqual(got, []int{4}) {
		t.Fatalf("Kept() = %v, want [4]", got)
	}
	if g.Dice[1].Dropped || !g.Dice[2].Dropped {
		t.Errorf("expected the earlier 4 to be kept: %+v", g.Dice)
	}
}

func TestEvaluate_Reroll(t *testing.T) {
	out := evaluate(t, "2d6r1", 1, 4, 6)

	g := out.Groups()[0]
	if len(g.Dice) != 3 {
		t.Fatalf("expected 3 dice, got %+v", g.Dice)
	}
	if !g.Dice[0].Dropped || !g.Dice[0].Rerolled {
		t.Errorf("first die should be rerolled: %+v", g.Dice[0])
	}
	if out.Total != 10 {
		t.Errorf("Total = %d, want 10", out.Total)
	}
	if want := "2d6r1 (~~1~~, 4, **6**) = `10`"; out.Breakdown != want {
		t.Errorf("Breakdown = %q, want %q", out.Breakdown, want)
	}
}

func TestEvaluate_Explode(t *testing.T) {
	out := evaluate(t, "2d6!", 6, 3, 6, 2)

	g := out.Groups()[0]
	if got := g.Values(); !reflect.DeepEqual(got, []int{6, 3, 6, 2}) {
		t.Fatalf("Values() = %v", got)
	}
	if !g.Dice[2].Exploded || !g.Dice[3].Exploded {
		t.Errorf("expected exploded dice: %+v", g.Dice)
	}
	if out.Total != 17 {
		t.Errorf("Total = %d, want 17", out.Total)
	}
}

func TestEvaluate_KeepCountsExplodedDice(t *testing.T) {
	out := evaluate(t, "4d6!kh5", 6, 1, 1, 1, 2)

	g := out.Groups()[0]
	if got := g.Kept(); !reflect.DeepEqual(got, []int{6, 1, 1, 1, 2}) {
		t.Fatalf("Kept() = %v, want all five dice", got)
	}
	if out.Total != 11 {
		t.Errorf("Total = %d, want 11", out.Total)
	}

	_, err := NewRoller(NewSequenceSource(2, 3, 4, 5)).Evaluate("4d6!kh5")
	var eerr *EvaluationError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected *EvaluationError without an explosion, got %v", err)
	}
	if want := "kh5 needs between 1 and 4 dice in 4d6!kh5"; eerr.Error() != want {
		t.Errorf("Error() = %q, want %q", eerr.Error(), want)
	}
}

func TestEvaluate_ExplosionIsBounded(t *testing.T) {
	_, err := NewRoller(NewSequenceSource(2)).Evaluate("1d2!")
	var eerr *EvaluationError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected *EvaluationError, got %v", err)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"keep more than rolled", "4d6kh5"},
		{"keep zero", "2d6kh0"},
		{"drop more than rolled", "2d6dl3"},
		{"explode d1", "1d1!"},
		{"reroll d1", "1d1r1"},
		{"reroll out of range", "1d6r7"},
		{"explode out of range", "1d6!7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoller(NewSequenceSource(3)).Evaluate(tt.expr)
			var eerr *EvaluationError
			if !errors.As(err, &eerr) {
				t.Fatalf("Evaluate(%q) error = %v, want *EvaluationError", tt.expr, err)
			}
			var perr *ParseError
			if errors.As(err, &perr) {
				t.Errorf("Evaluate(%q) returned a ParseError", tt.expr)
			}
		})
	}
}

func TestEvaluate_ParseErrorsDoNotPanic(t *testing.T) {
	for _, expr := range []string{"1d", "0d6"} {
		_, err := NewRoller(nil).Evaluate(expr)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Evaluate(%q) error = %v, want *ParseError", expr, err)
		}
	}
}

func TestEvaluate_NaturalFlagsUseFirstRolledDie(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		faces   []int
		wantMax bool
		wantMin bool
		total   int
	}{
		{"natural 20", "1d20+2", []int{20}, true, false, 22},
		{"natural 1", "1d20+2", []int{1}, false, true, 3},
		{"plain", "1d20+2", []int{11}, false, false, 13},
		{"dropped driving die", "2d20kl1", []int{20, 3}, true, false, 3},
		{"rerolled driving die", "1d20r1", []int{1, 15}, false, true, 15},
		{"constant first", "3+1d6", []int{6}, true, false, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evaluate(t, tt.expr, tt.faces...)
			if out.NaturalMax != tt.wantMax || out.NaturalMin != tt.wantMin {
				t.Errorf("NaturalMax=%v NaturalMin=%v, want %v %v", out.NaturalMax, out.NaturalMin, tt.wantMax, tt.wantMin)
			}
			if out.Total != tt.total {
				t.Errorf("Total = %d, want %d", out.Total, tt.total)
			}
		})
	}
}

func TestEvaluate_ConstantsOnly(t *testing.T) {
	out := evaluate(t, "5 - 2")
	if out.Total != 3 {
		t.Fatalf("Total = %d, want 3", out.Total)
	}
	if _, _, ok := out.DrivingDie(); ok {
		t.Errorf("expected no driving die")
	}
	if out.Breakdown != "5 - 2 = `3`" {
		t.Errorf("Breakdown = %q", out.Breakdown)
	}
}

func TestOutcome_Summary(t *testing.T) {
	out := evaluate(t, "4d6kh3-1d4+2", 5, 3, 1, 4, 2)
	if want := "4d6kh3 (…) - 1d4 (…) + 2 = `12`"; out.Summary() != want {
		t.Errorf("Summary() = %q, want %q", out.Summary(), want)
	}
}

func TestEvaluate_Determinism(t *testing.T) {
	const expr = "4d6kh3+1d8-2"
	first, err := NewRoller(NewSource(42)).Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	second, err := NewRoller(NewSource(42)).Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if first.Total != second.Total || first.Breakdown != second.Breakdown {
		t.Fatalf("same seed produced %q and %q", first.Breakdown, second.Breakdown)
	}
}

func TestEvaluate_TotalIsKeptPlusConstants(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		out, err := NewRoller(NewSource(seed)).Evaluate("5d6kh3 - 1d4 + 7")
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		want := 7
		groups := out.Groups()
		for _, v := range groups[0].Kept() {
			want += v
		}
		for _, v := range groups[1].Kept() {
			want -= v
		}
		if out.Total != want {
			t.Errorf("seed %d: Total = %d, want %d", seed, out.Total, want)
		}

		kept := groups[0].Kept()
		if len(kept) != 3 {
			t.Fatalf("seed %d: kept %d dice, want 3", seed, len(kept))
		}
		for _, d := range groups[0].Dice {
			if !d.Dropped {
				continue
			}
			for _, k := range kept {
				if d.Value > k {
					t.Errorf("seed %d: dropped %d above kept %d", seed, d.Value, k)
				}
			}
		}
	}
}
