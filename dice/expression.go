// Package dice parses and evaluates dice expressions such as 4d6kh3 or 1d20+2.
package dice

import (
	"strconv"
	"strings"
)

const (
	// MaxCount is the largest count a single dice group may declare.
	MaxCount = 1000
	// MaxSides is the largest die a group may declare.
	MaxSides = 10000
	// MaxRolled caps the dice rolled by one evaluation, explosions included.
	MaxRolled = 1000
)

// ModifierKind identifies a dice group modifier.
type ModifierKind int

const (
	KeepHighest ModifierKind = iota
	KeepLowest
	DropHighest
	DropLowest
	Reroll
	Explode
)

func (k ModifierKind) String() string {
	switch k {
	case KeepHighest:
		return "kh"
	case KeepLowest:
		return "kl"
	case DropHighest:
		return "dh"
	case DropLowest:
		return "dl"
	case Reroll:
		return "r"
	case Explode:
		return "!"
	default:
		return "?"
	}
}

// Modifier is one modifier attached to a dice group. Value is zero for a bare
// explode, meaning "explode on the highest face".
type Modifier struct {
	Kind  ModifierKind
	Value int
}

func (m Modifier) String() string {
	if m.Kind == Explode && m.Value == 0 {
		return "!"
	}
	return m.Kind.String() + strconv.Itoa(m.Value)
}

// Group is a dice group: count dice of the given sides plus modifiers.
type Group struct {
	Count     int
	Sides     int
	Modifiers []Modifier
}

func (g Group) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(g.Count))
	sb.WriteByte('d')
	sb.WriteString(strconv.Itoa(g.Sides))
	for _, m := range g.Modifiers {
		sb.WriteString(m.String())
	}
	return sb.String()
}

// Term is a signed constant or a signed dice group. Exactly one of Group and
// Constant is meaningful: Group is nil for constants.
type Term struct {
	Negative bool
	Constant int
	Group    *Group
}

func (t Term) body() string {
	if t.Group != nil {
		return t.Group.String()
	}
	return strconv.Itoa(t.Constant)
}

// Expression is a parsed dice expression. It is never mutated after Parse.
type Expression struct {
	Source string
	Terms  []Term
}

// String renders the expression in normalized form, e.g. "1d20+2".
func (e *Expression) String() string {
	var sb strings.Builder
	for i, t := range e.Terms {
		switch {
		case t.Negative:
			sb.WriteByte('-')
		case i > 0:
			sb.WriteByte('+')
		}
		sb.WriteString(t.body())
	}
	return sb.String()
}
