package render

import "github.com/ferro-labs/slumberlib/value"

// Function is a template function implementation. It receives the render
// context and the call's Arguments, and returns a LazyValue the evaluator
// either keeps lazy (request bodies) or collects immediately (everywhere
// else). Functions must not call args.Finish(); the evaluator does that
// after the function returns, so a documented "consumes all remaining
// positional args" function can still leave some unconsumed deliberately
// only by returning an error first.
type Function func(rc *RenderContext, args *Arguments) (value.LazyValue, error)

// registry is the fixed function set named in spec.md §4.1. Names outside
// this map fail with FunctionUnknown (spec.md §9 "dynamic dispatch").
var registry = map[string]Function{
	"base64":         fnBase64,
	"boolean":        fnBoolean,
	"integer":        fnInteger,
	"float":          fnFloat,
	"string":         fnString,
	"concat":         fnConcat,
	"command":        fnCommand,
	"env":            fnEnv,
	"file":           fnFile,
	"index":          fnIndex,
	"slice":          fnSlice,
	"join":           fnJoin,
	"split":          fnSplit,
	"jq":             fnJSONQuery,
	"jsonpath":       fnJSONQuery,
	"json_parse":     fnJSONParse,
	"lower":          fnLower,
	"upper":          fnUpper,
	"trim":           fnTrim,
	"replace":        fnReplace,
	"prompt":         fnPrompt,
	"select":         fnSelect,
	"response":       fnResponse,
	"response_header": fnResponseHeader,
	"sensitive":      fnSensitive,
	"debug":          fnDebug,
}
