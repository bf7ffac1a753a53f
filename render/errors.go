// Package render implements the template rendering engine: the field cache,
// the render context, function dispatch, and the error taxonomy that
// propagates failures up the expression tree.
package render

import (
	"fmt"

	"github.com/ferro-labs/slumberlib/value"
)

// ErrorKind identifies which category of render failure occurred, per
// spec.md §4.1's engine-layer error taxonomy.
type ErrorKind int

const (
	ErrUnknownField ErrorKind = iota
	ErrFunctionUnknown
	ErrTooFewArguments
	ErrTooManyArguments
	ErrArgumentConvert
	ErrValue
	ErrIO
	ErrCommand
	ErrCommandEmpty
	ErrJSON
	ErrJSONQueryEmpty
	ErrJSONQueryTooMany
	ErrRecipeUnknown
	ErrResponseMissing
	ErrResponseMissingHeader
	ErrPromptNoReply
	ErrSelectNoOptions
	ErrSelectNoReply
	ErrTrigger
	ErrProfileNested
	ErrCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownField:
		return "unknown_field"
	case ErrFunctionUnknown:
		return "function_unknown"
	case ErrTooFewArguments:
		return "too_few_arguments"
	case ErrTooManyArguments:
		return "too_many_arguments"
	case ErrArgumentConvert:
		return "argument_convert"
	case ErrValue:
		return "value"
	case ErrIO:
		return "io"
	case ErrCommand:
		return "command"
	case ErrCommandEmpty:
		return "command_empty"
	case ErrJSON:
		return "json"
	case ErrJSONQueryEmpty:
		return "json_query_empty"
	case ErrJSONQueryTooMany:
		return "json_query_too_many"
	case ErrRecipeUnknown:
		return "recipe_unknown"
	case ErrResponseMissing:
		return "response_missing"
	case ErrResponseMissingHeader:
		return "response_missing_header"
	case ErrPromptNoReply:
		return "prompt_no_reply"
	case ErrSelectNoOptions:
		return "select_no_options"
	case ErrSelectNoReply:
		return "select_no_reply"
	case ErrTrigger:
		return "trigger"
	case ErrProfileNested:
		return "profile_nested"
	case ErrCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is a render-layer failure. It names its Kind, carries an optional
// wrapped cause, and accumulates string Detail for display (field name,
// function name, argument name/index, recipe id, etc. depending on Kind).
type Error struct {
	Kind   ErrorKind
	Detail string
	Value  value.Value
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// UnknownField reports a bare identifier with no override or profile-data
// entry.
func UnknownField(name string) error {
	return &Error{Kind: ErrUnknownField, Detail: name}
}

// FunctionUnknown reports a call to a name outside the fixed function set.
func FunctionUnknown(name string) error {
	return &Error{Kind: ErrFunctionUnknown, Detail: name}
}

// TooFewArguments reports a positional-argument pop with nothing left.
func TooFewArguments(function string) error {
	return &Error{Kind: ErrTooFewArguments, Detail: function}
}

// TooManyArguments reports leftover arguments after a function finished
// consuming what it needed.
func TooManyArguments(function string) error {
	return &Error{Kind: ErrTooManyArguments, Detail: function}
}

// ArgumentConvert wraps a value-conversion failure with the argument
// name-or-index that triggered it, per spec.md §7.
func ArgumentConvert(nameOrIndex string, cause error) error {
	return &Error{Kind: ErrArgumentConvert, Detail: nameOrIndex, Cause: cause}
}

// ValueError wraps a value-layer error together with the offending value,
// per spec.md §7's "Value errors" tier.
func ValueError(v value.Value, cause error) error {
	return &Error{Kind: ErrValue, Value: v, Cause: cause}
}

// IOError reports a failed file or filesystem-adjacent operation.
func IOError(path string, cause error) error {
	return &Error{Kind: ErrIO, Detail: path, Cause: cause}
}

// CommandError reports a subprocess that exited with a failure status.
func CommandError(program string, args []string, exitStatus int, cause error) error {
	return &Error{
		Kind:   ErrCommand,
		Detail: fmt.Sprintf("%s %v (exit %d)", program, args, exitStatus),
		Cause:  cause,
	}
}

// CommandEmpty reports a `command` call with no program to run.
func CommandEmpty() error {
	return &Error{Kind: ErrCommandEmpty}
}

// JSONError reports a JSON parse failure.
func JSONError(cause error) error {
	return &Error{Kind: ErrJSON, Cause: cause}
}

// JSONQueryEmpty reports a jq/jsonpath query that matched nothing, under
// any mode.
func JSONQueryEmpty(query string) error {
	return &Error{Kind: ErrJSONQueryEmpty, Detail: query}
}

// JSONQueryTooMany reports a jq/jsonpath query that matched more than one
// result under mode=single.
func JSONQueryTooMany(query string) error {
	return &Error{Kind: ErrJSONQueryTooMany, Detail: query}
}

// RecipeUnknown reports a recipe id that does not exist in the collection.
func RecipeUnknown(recipeID string) error {
	return &Error{Kind: ErrRecipeUnknown, Detail: recipeID}
}

// ResponseMissing reports a response()/response_header() call with
// trigger=never and no cached exchange.
func ResponseMissing(recipeID string) error {
	return &Error{Kind: ErrResponseMissing, Detail: recipeID}
}

// ResponseMissingHeader reports a response_header() call naming a header
// absent from the response.
func ResponseMissingHeader(header string) error {
	return &Error{Kind: ErrResponseMissingHeader, Detail: header}
}

// PromptNoReply reports a dropped prompt reply channel.
func PromptNoReply() error {
	return &Error{Kind: ErrPromptNoReply}
}

// SelectNoOptions reports select() called with an empty options array.
func SelectNoOptions() error {
	return &Error{Kind: ErrSelectNoOptions}
}

// SelectNoReply reports a dropped select reply channel.
func SelectNoReply() error {
	return &Error{Kind: ErrSelectNoReply}
}

// Trigger wraps a dependent-request failure triggered by response()/
// response_header(), naming the recipe id that was being sent.
func Trigger(recipeID string, cause error) error {
	return &Error{Kind: ErrTrigger, Detail: recipeID, Cause: cause}
}

// ProfileNested wraps a nested field-render failure with the field name
// that triggered it.
func ProfileNested(field string, cause error) error {
	return &Error{Kind: ErrProfileNested, Detail: field, Cause: cause}
}

// Cancelled reports a render that observed its context's cancellation at a
// suspension point.
func Cancelled() error {
	return &Error{Kind: ErrCancelled}
}
