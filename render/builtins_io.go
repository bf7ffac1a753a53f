package render

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/value"
)

func fnEnv(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	name, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	v, ok := os.LookupEnv(name)
	if !ok {
		return value.LazyFromValue(value.Null), nil
	}
	return value.LazyFromValue(value.String(v)), nil
}

// collectionRoot returns the directory the file() function resolves
// relative paths against. It is stashed on the RenderContext's collection
// by the loader; nil collections (tests) resolve against the current
// working directory.
func collectionRoot(rc *RenderContext) string {
	if rc.Collection == nil {
		return "."
	}
	return rc.Collection.Root
}

func fnFile(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	path, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(collectionRoot(rc), path)
	}
	f, err := os.Open(full)
	if err != nil {
		return value.LazyValue{}, IOError(path, err)
	}
	return value.LazyFromStream(value.Stream{Origin: value.StreamOriginFile, Source: f}), nil
}

func fnCommand(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	var program string
	var cmdArgs []string
	for args.HasMorePositional() {
		s, err := args.PopString()
		if err != nil {
			return value.LazyValue{}, err
		}
		if program == "" {
			program = s
			continue
		}
		cmdArgs = append(cmdArgs, s)
	}
	if program == "" {
		return value.LazyValue{}, CommandEmpty()
	}
	stdin, hasStdin, err := args.KeywordValue("stdin")
	if err != nil {
		return value.LazyValue{}, err
	}

	ctx := rc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, program, cmdArgs...)
	if hasStdin {
		cmd.Stdin = bytes.NewReader(stdin.IntoBytes())
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitStatus := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitStatus = exitErr.ExitCode()
		}
		return value.LazyValue{}, CommandError(program, cmdArgs, exitStatus, err)
	}
	return value.LazyFromValue(value.Bytes(stdout.Bytes())), nil
}

func fnPrompt(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	message, err := args.KeywordString("message", "")
	if err != nil {
		return value.LazyValue{}, err
	}
	def, hasDefault, err := args.KeywordValue("default")
	if err != nil {
		return value.LazyValue{}, err
	}
	sensitive, err := args.KeywordBool("sensitive", false)
	if err != nil {
		return value.LazyValue{}, err
	}

	defStr := ""
	if hasDefault {
		defStr, _ = def.TryString()
	}

	reply := make(chan PromptReply, 1)
	req := PromptRequest{
		Kind:       PromptText,
		Message:    message,
		Default:    defStr,
		HasDefault: hasDefault,
		Sensitive:  sensitive,
		Reply:      reply,
	}
	rc.Prompter.Prompt(rc.Ctx, req)

	select {
	case r, ok := <-reply:
		if !ok {
			return value.LazyValue{}, PromptNoReply()
		}
		v := value.String(r.Text)
		if sensitive {
			v = v.WithSensitive(true)
		}
		return value.LazyFromValue(v), nil
	case <-doneChan(rc.Ctx):
		return value.LazyValue{}, Cancelled()
	}
}

func fnSelect(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	optionsVal, err := args.PopValue()
	if err != nil {
		return value.LazyValue{}, err
	}
	message, err := args.KeywordString("message", "")
	if err != nil {
		return value.LazyValue{}, err
	}

	options := make([]string, 0, len(optionsVal.Elements()))
	for _, e := range optionsVal.Elements() {
		s, serr := e.TryString()
		if serr != nil {
			return value.LazyValue{}, ValueError(e, serr)
		}
		options = append(options, s)
	}
	if len(options) == 0 {
		return value.LazyValue{}, SelectNoOptions()
	}

	reply := make(chan PromptReply, 1)
	req := PromptRequest{
		Kind:    PromptSelect,
		Message: message,
		Options: options,
		Reply:   reply,
	}
	rc.Prompter.Prompt(rc.Ctx, req)

	select {
	case r, ok := <-reply:
		if !ok {
			return value.LazyValue{}, SelectNoReply()
		}
		return value.LazyFromValue(value.String(r.Text)), nil
	case <-doneChan(rc.Ctx):
		return value.LazyValue{}, Cancelled()
	}
}

func doneChan(ctx context.Context) <-chan struct{} {
	if ctx == nil {
		return nil
	}
	return ctx.Done()
}

// ResponseTrigger is the parsed form of the `trigger` keyword argument
// shared by response() and response_header() (spec.md §4.1 "Response fetch
// semantics").
type ResponseTrigger struct {
	Never     bool
	NoHistory bool
	Always    bool
	After     time.Duration
	HasAfter  bool
}

func parseResponseTrigger(s string) (ResponseTrigger, error) {
	switch s {
	case "", "never":
		return ResponseTrigger{Never: true}, nil
	case "no_history":
		return ResponseTrigger{NoHistory: true}, nil
	case "always":
		return ResponseTrigger{Always: true}, nil
	default:
		d, err := time.ParseDuration(s)
		if err != nil {
			return ResponseTrigger{}, ArgumentConvert("trigger", err)
		}
		return ResponseTrigger{After: d, HasAfter: true}, nil
	}
}

func fnResponse(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	exc, err := fetchExchange(rc, args)
	if err != nil {
		return value.LazyValue{}, err
	}
	return value.LazyFromValue(value.Bytes(exc.Response.Body)), nil
}

func fnResponseHeader(rc *RenderContext, args *Arguments) (value.LazyValue, error) {
	exc, err := fetchExchange(rc, args)
	if err != nil {
		return value.LazyValue{}, err
	}
	header, err := args.PopString()
	if err != nil {
		return value.LazyValue{}, err
	}
	v, ok := exc.Response.Headers.Get(header)
	if !ok {
		return value.LazyValue{}, ResponseMissingHeader(header)
	}
	return value.LazyFromValue(value.String(v)), nil
}
