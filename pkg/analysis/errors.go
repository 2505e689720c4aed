package analysis

import "fmt"

// AnalysisError is a semantic error discovered while analyzing a statement or
// a definition body. It is terminal for the current statement's analysis
// pass.
//
//nolint:revive // analysis.AnalysisError matches the error's established name
type AnalysisError struct {
	Message string
}

func (e *AnalysisError) Error() string {
	return "analysis error: " + e.Message
}

// Errorf creates an AnalysisError with a formatted message.
func Errorf(format string, args ...any) *AnalysisError {
	return &AnalysisError{Message: fmt.Sprintf(format, args...)}
}

// DuplicateAliasError reports two definitions in the same WITH clause sharing
// an alias under the identifier-normalization policy. The colliding
// definition may already have been analyzed, but it is never registered.
type DuplicateAliasError struct {
	Alias string
}

func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("duplicate table alias %q", e.Alias)
}
