package dice

import (
	"fmt"
	"sort"
)

// Roller evaluates expressions against a random Source.
type Roller struct {
	src Source
}

// NewRoller returns a Roller drawing from src. A nil src uses a clock-seeded
// source.
func NewRoller(src Source) *Roller {
	if src == nil {
		src = NewSource(0)
	}
	return &Roller{src: src}
}

// Evaluate parses and evaluates expr.
//
// Each group rolls Count dice in [1, Sides], then applies its modifiers left to
// right to the dice still kept. Ties in keep/drop modifiers keep the earliest
// rolled die. The total is the sum of every kept die plus the signed
// constants.
func (r *Roller) Evaluate(expr string) (*Outcome, error) {
	e, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return r.EvaluateExpression(e)
}

// EvaluateExpression evaluates an already parsed expression.
func (r *Roller) EvaluateExpression(e *Expression) (*Outcome, error) {
	ev := &evaluation{src: r.src, expr: e}

	out := &Outcome{Expression: e, Terms: make([]TermResult, 0, len(e.Terms))}
	for _, t := range e.Terms {
		tr := TermResult{Term: t, Value: t.Constant}
		if t.Group != nil {
			g, err := ev.group(t.Group)
			if err != nil {
				return nil, err
			}
			tr.Group = g
			tr.Value = g.Total
		}
		if t.Negative {
			tr.Value = -tr.Value
		}
		out.Total += tr.Value
		out.Terms = append(out.Terms, tr)
	}

	if v, sides, ok := out.DrivingDie(); ok {
		out.NaturalMax = v == sides
		out.NaturalMin = v == 1
	}
	out.Breakdown = out.render(true)
	return out, nil
}

type evaluation struct {
	src    Source
	expr   *Expression
	rolled int
}

func (ev *evaluation) errorf(format string, args ...any) *EvaluationError {
	return &EvaluationError{Expr: ev.expr.Source, Msg: fmt.Sprintf(format, args...)}
}

func (ev *evaluation) roll(sides int) (int, error) {
	if ev.rolled >= MaxRolled {
		return 0, ev.errorf("too many dice rolled (max %d)", MaxRolled)
	}
	ev.rolled++
	return ev.src.Intn(sides) + 1, nil
}

func (ev *evaluation) group(g *Group) (*GroupResult, error) {
	if err := ev.validate(g); err != nil {
		return nil, err
	}

	res := &GroupResult{Group: *g, Dice: make([]Die, 0, g.Count)}
	for i := 0; i < g.Count; i++ {
		v, err := ev.roll(g.Sides)
		if err != nil {
			return nil, err
		}
		res.Dice = append(res.Dice, Die{Value: v})
	}

	for _, m := range g.Modifiers {
		if err := ev.apply(res, m); err != nil {
			return nil, err
		}
	}

	for _, d := range res.Dice {
		if !d.Dropped {
			res.Total += d.Value
		}
	}
	return res, nil
}

func (ev *evaluation) validate(g *Group) error {
	for _, m := range g.Modifiers {
		switch m.Kind {
		case Reroll, Explode:
			if g.Sides == 1 {
				return ev.errorf("cannot %s a d1", verb(m.Kind))
			}
			if m.Value != 0 && (m.Value < 1 || m.Value > g.Sides) {
				return ev.errorf("cannot %s on %d with a d%d", verb(m.Kind), m.Value, g.Sides)
			}
		}
	}
	return nil
}

func verb(k ModifierKind) string {
	if k == Reroll {
		return "reroll"
	}
	return "explode"
}

func (ev *evaluation) apply(res *GroupResult, m Modifier) error {
	kept, rolled := 0, 0
	for _, d := range res.Dice {
		if !d.Dropped {
			kept++
		}
		if !d.Rerolled {
			rolled++
		}
	}

	switch m.Kind {
	case KeepHighest, KeepLowest, DropHighest, DropLowest:
		// explosions so far count; rerolled dice were replaced
		if m.Value < 1 || m.Value > rolled {
			return ev.errorf("%s%d needs between 1 and %d dice in %s", m.Kind, m.Value, rolled, res.Group)
		}
	}

	switch m.Kind {
	case KeepHighest:
		keep(res, m.Value, true)
	case KeepLowest:
		keep(res, m.Value, false)
	case DropHighest:
		keep(res, kept-m.Value, false)
	case DropLowest:
		keep(res, kept-m.Value, true)
	case Reroll:
		n := len(res.Dice)
		for i := 0; i < n; i++ {
			if res.Dice[i].Dropped || res.Dice[i].Value != m.Value {
				continue
			}
			res.Dice[i].Dropped = true
			res.Dice[i].Rerolled = true
			v, err := ev.roll(res.Group.Sides)
			if err != nil {
				return err
			}
			res.Dice = append(res.Dice, Die{Value: v})
		}
	case Explode:
		target := m.Value
		if target == 0 {
			target = res.Group.Sides
		}
		for i := 0; i < len(res.Dice); i++ {
			if res.Dice[i].Dropped || res.Dice[i].Value != target {
				continue
			}
			v, err := ev.roll(res.Group.Sides)
			if err != nil {
				return err
			}
			res.Dice = append(res.Dice, Die{Value: v, Exploded: true})
		}
	}
	return nil
}

// keep retains the n highest (or lowest) kept dice and drops the rest.
func keep(res *GroupResult, n int, highest bool) {
	var idx []int
	for i, d := range res.Dice {
		if !d.Dropped {
			idx = append(idx, i)
		}
	}
	if n >= len(idx) {
		return
	}
	if n < 0 {
		n = 0
	}

	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := res.Dice[idx[a]].Value, res.Dice[idx[b]].Value
		if highest {
			return va > vb
		}
		return va < vb
	})
	for _, i := range idx[n:] {
		res.Dice[i].Dropped = true
	}
}
