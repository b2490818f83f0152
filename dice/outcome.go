package dice

import (
	"strconv"
	"strings"
)

// Die is a single rolled die. Rerolled dice are always dropped; their
// replacement follows later in roll order.
type Die struct {
	Value    int
	Dropped  bool
	Rerolled bool
	Exploded bool
}

// GroupResult holds the dice of one group in roll order.
type GroupResult struct {
	Group Group
	Dice  []Die
	Total int
}

// Values returns every rolled value in roll order, dropped dice included.
func (g *GroupResult) Values() []int {
	values := make([]int, len(g.Dice))
	for i, d := range g.Dice {
		values[i] = d.Value
	}
	return values
}

// Kept returns the retained values in roll order.
func (g *GroupResult) Kept() []int {
	var kept []int
	for _, d := range g.Dice {
		if !d.Dropped {
			kept = append(kept, d.Value)
		}
	}
	return kept
}

// TermResult is the evaluated form of one Term. Value is the signed
// contribution to the total.
type TermResult struct {
	Term  Term
	Group *GroupResult
	Value int
}

// Outcome is the result of evaluating an Expression.
type Outcome struct {
	Expression *Expression
	Terms      []TermResult
	Total      int
	Breakdown  string

	// NaturalMax and NaturalMin describe the first die of the first group
	// as it was rolled, before any modifier touched it.
	NaturalMax bool
	NaturalMin bool
}

// Groups returns the dice groups in expression order.
func (o *Outcome) Groups() []*GroupResult {
	var groups []*GroupResult
	for _, t := range o.Terms {
		if t.Group != nil {
			groups = append(groups, t.Group)
		}
	}
	return groups
}

// DrivingDie returns the first value rolled in the first dice group and that
// group's sides. ok is false for expressions without dice.
func (o *Outcome) DrivingDie() (value, sides int, ok bool) {
	for _, t := range o.Terms {
		if t.Group != nil && len(t.Group.Dice) > 0 {
			return t.Group.Dice[0].Value, t.Group.Group.Sides, true
		}
	}
	return 0, 0, false
}

// Summary is Breakdown with every group's dice list collapsed to "…", for
// rolls too long to show in full.
func (o *Outcome) Summary() string {
	return o.render(false)
}

func (o *Outcome) render(dice bool) string {
	var sb strings.Builder
	for i, t := range o.Terms {
		switch {
		case i == 0 && t.Term.Negative:
			sb.WriteByte('-')
		case i > 0 && t.Term.Negative:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		if t.Group == nil {
			sb.WriteString(strconv.Itoa(t.Term.Constant))
			continue
		}
		sb.WriteString(t.Group.Group.String())
		sb.WriteString(" (")
		if !dice {
			sb.WriteString("…)")
			continue
		}
		for j, d := range t.Group.Dice {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(renderDie(d, t.Group.Group.Sides))
		}
		sb.WriteByte(')')
	}
	sb.WriteString(" = `")
	sb.WriteString(strconv.Itoa(o.Total))
	sb.WriteByte('`')
	return sb.String()
}

func renderDie(d Die, sides int) string {
	v := strconv.Itoa(d.Value)
	switch {
	case d.Dropped:
		return "~~" + v + "~~"
	case d.Value == sides || d.Value == 1:
		return "**" + v + "**"
	default:
		return v
	}
}
