package tree

import "fmt"

// InvalidInputError reports input that cannot be translated as a tree
type InvalidInputError struct {
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Err)
	}
	return "invalid input: " + e.Reason
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}
