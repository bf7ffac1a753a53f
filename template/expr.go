package template

// ExprKind identifies which variant an Expression holds.
type ExprKind int

const (
	// ExprLiteral is a literal scalar embedded directly in an expression,
	// e.g. the `'login'` in `response('login')`.
	ExprLiteral ExprKind = iota
	// ExprFieldRef is a bare identifier resolved against overrides/profile
	// data at render time.
	ExprFieldRef
	// ExprCall is a function call, built from either `name(args)` syntax
	// or desugared from a `.field` postfix access or a `|` pipe.
	ExprCall
)

// LiteralKind identifies the scalar type of an ExprLiteral expression.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralBool
	LiteralNull
)

// Expression is a node in a parsed template expression tree: a literal
// scalar, a field reference, or a function call whose arguments are
// themselves expressions.
type Expression struct {
	Kind ExprKind

	// ExprLiteral fields.
	LiteralKind LiteralKind
	StringVal   string
	IntVal      int64
	FloatVal    float64
	BoolVal     bool

	// ExprFieldRef fields.
	FieldName string

	// ExprCall fields.
	FuncName   string
	Positional []Expression
	Keyword    map[string]Expression
	// KeywordOrder preserves the source order of keyword arguments so
	// Display can reproduce it; map iteration order is not stable.
	KeywordOrder []string
}

// FieldRef builds a field-reference expression.
func FieldRef(name string) Expression {
	return Expression{Kind: ExprFieldRef, FieldName: name}
}

// StringLiteral builds a string literal expression.
func StringLiteral(s string) Expression {
	return Expression{Kind: ExprLiteral, LiteralKind: LiteralString, StringVal: s}
}

// IntLiteral builds an integer literal expression.
func IntLiteral(i int64) Expression {
	return Expression{Kind: ExprLiteral, LiteralKind: LiteralInt, IntVal: i}
}

// FloatLiteral builds a float literal expression.
func FloatLiteral(f float64) Expression {
	return Expression{Kind: ExprLiteral, LiteralKind: LiteralFloat, FloatVal: f}
}

// BoolLiteral builds a boolean literal expression.
func BoolLiteral(b bool) Expression {
	return Expression{Kind: ExprLiteral, LiteralKind: LiteralBool, BoolVal: b}
}

// NullLiteral builds a null literal expression.
func NullLiteral() Expression {
	return Expression{Kind: ExprLiteral, LiteralKind: LiteralNull}
}

// Call builds a function call expression with the given positional and
// keyword arguments. keywordOrder must list every key in Keyword exactly
// once, in source order.
func Call(name string, positional []Expression, keyword map[string]Expression, keywordOrder []string) Expression {
	return Expression{
		Kind:         ExprCall,
		FuncName:     name,
		Positional:   positional,
		Keyword:      keyword,
		KeywordOrder: keywordOrder,
	}
}
