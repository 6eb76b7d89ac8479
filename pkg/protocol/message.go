package protocol

import (
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/ports"
)

// Op discriminates requests.
type Op string

const (
	OpHasFunction      Op = "hasFunction"
	OpCallFunction     Op = "callFunction"
	OpValidateFunction Op = "validateFunction"
	OpExit             Op = "exit"
)

// Request is sent by the host.
type Request struct {
	Op       Op                       `json:"op"`
	Name     string                   `json:"name,omitempty"`
	Args     []any                    `json:"args,omitempty"`
	Criteria []ports.FunctionCriteria `json:"criteria,omitempty"`
}

// Response answers exactly one Request. Exception is set when the function itself failed.
type Response struct {
	Result    any                     `json:"result,omitempty"`
	Found     bool                    `json:"found,omitempty"`
	Errors    []ports.ValidationError `json:"errors,omitempty"`
	Exception *Exception              `json:"exception,omitempty"`
}

// Exception is the envelope a worker uses to report a failing function.
type Exception struct {
	Message string          `json:"message"`
	Stack   []diag.Location `json:"stack,omitempty"`
}

// FunctionError converts the envelope into the error the engine understands.
func (e *Exception) FunctionError(function, language string) *ports.FunctionError {
	return &ports.FunctionError{
		Function: function,
		Message:  e.Message,
		Language: language,
		Stack:    append([]diag.Location(nil), e.Stack...),
	}
}
