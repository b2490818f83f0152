package dice

// DefaultThreshold is the difficulty used when a check does not name one.
const DefaultThreshold = 12

// Category is the outcome of a check.
type Category int

const (
	Failure Category = iota
	Success
	Critical
	Fumble
)

func (c Category) String() string {
	switch c {
	case Failure:
		return "FAILURE"
	case Success:
		return "SUCCESS"
	case Critical:
		return "CRITICAL"
	case Fumble:
		return "FUMBLE"
	default:
		return "UNKNOWN"
	}
}

// CheckResult is an Outcome judged against a threshold.
type CheckResult struct {
	Outcome   *Outcome
	Threshold int
	Category  Category
}

// Classify judges o against threshold. A natural max on the driving die is
// Critical and a natural 1 is Fumble, whatever the total; otherwise the total
// must meet the threshold. Critical wins when both apply (a d1).
func Classify(o *Outcome, threshold int) CheckResult {
	res := CheckResult{Outcome: o, Threshold: threshold}
	switch {
	case o.NaturalMax:
		res.Category = Critical
	case o.NaturalMin:
		res.Category = Fumble
	case o.Total >= threshold:
		res.Category = Success
	default:
		res.Category = Failure
	}
	return res
}
