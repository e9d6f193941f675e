package knowledge

import "fmt"

// ContractError reports a probe result that violates the Ingest call
// contract. Deductions made from inconsistent input would be unsound,
// so a bad probe is rejected outright instead of absorbed.
type ContractError struct {
	message string
}

// [ContractError] implements [error]
func (e ContractError) Error() string {
	return e.message
}

func contractErrorf(format string, args ...any) ContractError {
	return ContractError{fmt.Sprintf(format, args...)}
}
