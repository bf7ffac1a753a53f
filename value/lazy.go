package value

import "io"

// StreamOrigin tags where a Stream's bytes come from, for diagnostics and
// for functions (like response()) that want to special-case one origin.
type StreamOrigin int

const (
	// StreamOriginCommand tags command output. The command function
	// collects stdout into a Bytes value, so it produces no stream.
	StreamOriginCommand StreamOrigin = iota
	// StreamOriginFile marks a stream produced by the file function.
	StreamOriginFile
)

func (o StreamOrigin) String() string {
	switch o {
	case StreamOriginCommand:
		return "command"
	case StreamOriginFile:
		return "file"
	default:
		return "unknown"
	}
}

// Stream is a lazily-consumed byte source tagged with its origin. Streams
// are never cached: the field cache takes a stream's bytes once and leaves
// nothing reusable behind (spec.md §9 "streaming versus values").
type Stream struct {
	Origin StreamOrigin
	Source io.ReadCloser
}

// Collect reads the entire stream to memory and returns it as a Value,
// closing the underlying source. This is the path every render site other
// than a request body must take before using a streamed result.
func (s Stream) Collect() (Value, error) {
	defer s.Source.Close()
	b, err := io.ReadAll(s.Source)
	if err != nil {
		return Value{}, err
	}
	return Bytes(b), nil
}

// LazyKind identifies which variant a LazyValue holds.
type LazyKind int

const (
	// LazyKindValue holds a fully-realised Value.
	LazyKindValue LazyKind = iota
	// LazyKindStream holds an unconsumed streamed byte source.
	LazyKindStream
	// LazyKindNested holds a nested rendered-output chunk list, produced
	// when a function's argument rendering yields multiple chunks that
	// the caller defers concatenating.
	LazyKindNested
)

// LazyValue is either a realised Value, a streamed byte source tagged with
// its origin, or a nested RenderedOutput. Only request bodies may consume a
// stream directly; every other render site must call Collect first.
type LazyValue struct {
	kind   LazyKind
	value  Value
	stream Stream
	nested RenderedOutput
}

// LazyFromValue wraps an already-realised Value.
func LazyFromValue(v Value) LazyValue { return LazyValue{kind: LazyKindValue, value: v} }

// LazyFromStream wraps a streamed byte source.
func LazyFromStream(s Stream) LazyValue { return LazyValue{kind: LazyKindStream, stream: s} }

// LazyFromOutput wraps a nested rendered-output chunk list.
func LazyFromOutput(out RenderedOutput) LazyValue { return LazyValue{kind: LazyKindNested, nested: out} }

// Kind reports which variant lv holds.
func (lv LazyValue) Kind() LazyKind { return lv.kind }

// IsStream reports whether lv holds an unconsumed stream.
func (lv LazyValue) IsStream() bool { return lv.kind == LazyKindStream }

// StreamValue returns the wrapped stream and true if lv holds one.
func (lv LazyValue) StreamValue() (Stream, bool) {
	if lv.kind != LazyKindStream {
		return Stream{}, false
	}
	return lv.stream, true
}

// Collect materialises lv to a Value, consuming any stream and flattening
// any nested output by concatenation. Every render site other than a
// request body calls this before using the result (spec.md §3 LazyValue).
func (lv LazyValue) Collect() (Value, error) {
	switch lv.kind {
	case LazyKindValue:
		return lv.value, nil
	case LazyKindStream:
		return lv.stream.Collect()
	case LazyKindNested:
		return lv.nested.CollectValue()
	default:
		return Null, nil
	}
}

// Chunk is one element of a RenderedOutput: either a raw byte slice copied
// from template literal text, or a LazyValue produced by rendering an
// expression.
type Chunk struct {
	raw    []byte
	isLazy bool
	lazy   LazyValue
}

// RawChunk wraps literal template bytes.
func RawChunk(b []byte) Chunk { return Chunk{raw: b} }

// LazyChunk wraps an expression's rendered LazyValue.
func LazyChunk(lv LazyValue) Chunk { return Chunk{isLazy: true, lazy: lv} }

// IsLazy reports whether c holds a LazyValue rather than raw bytes.
func (c Chunk) IsLazy() bool { return c.isLazy }

// Lazy returns the wrapped LazyValue and true if c holds one.
func (c Chunk) Lazy() (LazyValue, bool) {
	if !c.isLazy {
		return LazyValue{}, false
	}
	return c.lazy, true
}

// Bytes returns the raw bytes and true if c holds a literal chunk.
func (c Chunk) Bytes() ([]byte, bool) {
	if c.isLazy {
		return nil, false
	}
	return c.raw, true
}

// RenderedOutput is the ordered list of chunks produced by rendering a
// template. Per spec.md §3, an output is a single Value iff it has exactly
// one chunk and that chunk is a realised (non-streaming) value; otherwise
// it must be concatenated as bytes on demand.
type RenderedOutput struct {
	Chunks []Chunk
}

// NewRenderedOutput wraps chunks into a RenderedOutput.
func NewRenderedOutput(chunks []Chunk) RenderedOutput {
	return RenderedOutput{Chunks: chunks}
}

// AsSingleValue returns the sole Value and true iff out has exactly one
// chunk, that chunk is a LazyValue, and that LazyValue is not an unconsumed
// stream.
func (out RenderedOutput) AsSingleValue() (Value, bool) {
	if len(out.Chunks) != 1 {
		return Value{}, false
	}
	lv, ok := out.Chunks[0].Lazy()
	if !ok || lv.IsStream() {
		return Value{}, false
	}
	v, err := lv.Collect()
	if err != nil {
		return Value{}, false
	}
	return v, true
}

// AsSingleStream returns the sole unconsumed Stream and true iff out has
// exactly one chunk, that chunk is a LazyValue, and that LazyValue wraps a
// stream. Only request body rendering is expected to call this.
func (out RenderedOutput) AsSingleStream() (Stream, bool) {
	if len(out.Chunks) != 1 {
		return Stream{}, false
	}
	lv, ok := out.Chunks[0].Lazy()
	if !ok {
		return Stream{}, false
	}
	return lv.StreamValue()
}

// CollectValue concatenates every chunk to bytes and wraps the result as a
// Value, consuming any streams encountered along the way. This is the
// fallback used whenever a render site cannot retain a single value or
// stream as-is.
func (out RenderedOutput) CollectValue() (Value, error) {
	if v, ok := out.AsSingleValue(); ok {
		return v, nil
	}
	b, err := out.CollectBytes()
	if err != nil {
		return Value{}, err
	}
	return Bytes(b), nil
}

// CollectBytes concatenates every chunk to a single byte slice, consuming
// any streams encountered along the way.
func (out RenderedOutput) CollectBytes() ([]byte, error) {
	var buf []byte
	for _, c := range out.Chunks {
		if raw, ok := c.Bytes(); ok {
			buf = append(buf, raw...)
			continue
		}
		lv, _ := c.Lazy()
		v, err := lv.Collect()
		if err != nil {
			return nil, err
		}
		buf = append(buf, v.IntoBytes()...)
	}
	return buf, nil
}
