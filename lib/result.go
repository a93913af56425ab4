package lib

import "fmt"

type ErrorKind int

const (
	InvalidInput ErrorKind = iota + 1
	NotFound
	ExternalServiceError
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case NotFound:
		return "NotFound"
	case ExternalServiceError:
		return "ExternalServiceError"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

type Failure struct {
	Kind    ErrorKind
	Message string
}

func (f *Failure) Error() string {
	return f.Kind.String() + ": " + f.Message
}

// Result is the outcome of one operation: a value, or a Failure.
type Result struct {
	Value   any
	Created bool
	Failure *Failure
}

func Ok(value any) Result {
	return Result{Value: value}
}

func Created(value any) Result {
	return Result{Value: value, Created: true}
}

func Fail(kind ErrorKind, message string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: message}}
}

// FailExternal keeps the collaborator's error text verbatim.
func FailExternal(err error) Result {
	return Fail(ExternalServiceError, err.Error())
}

func (r Result) Failed() bool {
	return r.Failure != nil
}
