// Package morkborg holds the Mörk Borg specific rolls: ability checks against
// a difficulty rating and the 2d6 reaction table.
package morkborg

import (
	"fmt"

	"knucklebone/dice"
)

// CheckExpression builds the d20 expression for an ability check.
func CheckExpression(modifier int) string {
	if modifier == 0 {
		return "1d20"
	}
	return fmt.Sprintf("1d20%+d", modifier)
}

// Check rolls an ability check with modifier against the difficulty rating dr.
func Check(r *dice.Roller, modifier, dr int) (dice.CheckResult, error) {
	out, err := r.Evaluate(CheckExpression(modifier))
	if err != nil {
		return dice.CheckResult{}, err
	}
	return dice.Classify(out, dr), nil
}

// ReactionExpression is the reaction roll.
const ReactionExpression = "2d6"

// Disposition is a creature's reaction towards the party.
type Disposition string

const (
	Kill           Disposition = "Kill!"
	Angered        Disposition = "Angered"
	Indifferent    Disposition = "Indifferent"
	AlmostFriendly Disposition = "Almost friendly"
	Helpful        Disposition = "Helpful"
)

// band bounds are inclusive upper limits, checked in order.
var reactionBands = []struct {
	max         int
	disposition Disposition
}{
	{3, Kill},
	{6, Angered},
	{8, Indifferent},
	{10, AlmostFriendly},
}

// ReactionFor maps a 2d6 total to a disposition.
func ReactionFor(total int) Disposition {
	for _, b := range reactionBands {
		if total <= b.max {
			return b.disposition
		}
	}
	return Helpful
}

// ReactionResult is a rolled reaction.
type ReactionResult struct {
	Outcome     *dice.Outcome
	Disposition Disposition
}

// Reaction rolls 2d6 on the reaction table.
func Reaction(r *dice.Roller) (ReactionResult, error) {
	out, err := r.Evaluate(ReactionExpression)
	if err != nil {
		return ReactionResult{}, err
	}
	return ReactionResult{Outcome: out, Disposition: ReactionFor(out.Total)}, nil
}
