package diag

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer   Stage = "lexer"
	StageParser  Stage = "parser"
	StageCheck   Stage = "check"
	StageCodegen Stage = "codegen"
)

// Severity captures how impactful the diagnostic is. SeverityICE marks an
// internal compiler error: a violated invariant rather than a problem with
// the user's source.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
	SeverityICE     Severity = "ice"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	CodeLexerUnterminatedString       Code = "LEXER_UNTERMINATED_STRING"
	CodeLexerUnterminatedBlockComment Code = "LEXER_UNTERMINATED_BLOCK_COMMENT"
	CodeLexerIllegalRune              Code = "LEXER_ILLEGAL_RUNE"

	CodeParseError Code = "PARSE_ERROR"

	CodeTypeMismatch             Code = "TYPE_MISMATCH"
	CodeSymbolNotFound           Code = "SYMBOL_NOT_FOUND"
	CodeDuplicateDeclaration     Code = "DUPLICATE_DECLARATION"
	CodeReturnOutsideFunction    Code = "RETURN_OUTSIDE_FUNCTION"
	CodeAbstractMethodInConcrete Code = "ABSTRACT_METHOD_IN_CONCRETE_CLASS"
	CodeAbstractMethodNotImpl    Code = "ABSTRACT_METHOD_NOT_IMPLEMENTED"
	CodePropertyNotFound         Code = "PROPERTY_NOT_FOUND"
	CodeGenericArgMismatch       Code = "GENERIC_TYPE_ARGUMENT_MISMATCH"
	CodeConstructorInMixin       Code = "CONSTRUCTOR_IN_MIXIN"
	CodeUnknownError             Code = "UNKNOWN_ERROR"

	CodeInternalError Code = "INTERNAL_ERROR"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage      Stage
	Severity   Severity
	Code       Code
	Message    string
	Span       Span
	Suggestion string // optional "did you mean" text appended by the checker
}

// InternalError is panicked by a pass that has detected a violated internal
// invariant, never a user-facing condition. The raising pass's entry point
// (the checker's CheckWithFilename, codegen's Generate) recovers it and
// reports it as a SeverityICE diagnostic.
type InternalError struct {
	Invariant string
	Context   string
	Span      Span
}

func (e *InternalError) Error() string {
	if e.Context == "" {
		return "internal error: " + e.Invariant
	}
	return "internal error: " + e.Invariant + " (" + e.Context + ")"
}

// AsDiagnostic converts an InternalError into a reportable ICE diagnostic.
func (e *InternalError) AsDiagnostic(stage Stage) Diagnostic {
	return Diagnostic{
		Stage:    stage,
		Severity: SeverityICE,
		Code:     CodeInternalError,
		Message:  e.Error(),
		Span:     e.Span,
	}
}
