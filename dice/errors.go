package dice

import "fmt"

// ParseError reports an expression that does not match the dice grammar.
type ParseError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos+1)
}

// EvaluationError reports a modifier that parsed but cannot be applied to its group.
type EvaluationError struct {
	Expr string
	Msg  string
}

func (e *EvaluationError) Error() string {
	return e.Msg
}
