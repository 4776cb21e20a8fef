package ast

import "fmt"

// Kind is the type of an ast Node.
type Kind int

// AST Node kinds.
const (
	KindInvalid       Kind = iota // Invalid
	KindFile                      // File
	KindImport                    // Import
	KindVar                       // Var
	KindConst                     // Const
	KindFunc                      // Func
	KindParam                     // Param
	KindType                      // Type
	KindBlock                     // Block
	KindReturn                    // Return
	KindIf                        // If
	KindLoop                      // Loop
	KindBreak                     // Break
	KindContinue                  // Continue
	KindAssign                    // Assign
	KindExprStatement             // ExprStatement
	KindIdent                     // Ident
	KindInt                       // Int
	KindFloat                     // Float
	KindString                    // String
	KindChar                      // Char
	KindBool                      // Bool
	KindUnary                     // Unary
	KindBinary                    // Binary
	KindCall                      // Call
)

var kindNames = [...]string{
	KindInvalid:       "Invalid",
	KindFile:          "File",
	KindImport:        "Import",
	KindVar:           "Var",
	KindConst:         "Const",
	KindFunc:          "Func",
	KindParam:         "Param",
	KindType:          "Type",
	KindBlock:         "Block",
	KindReturn:        "Return",
	KindIf:            "If",
	KindLoop:          "Loop",
	KindBreak:         "Break",
	KindContinue:      "Continue",
	KindAssign:        "Assign",
	KindExprStatement: "ExprStatement",
	KindIdent:         "Ident",
	KindInt:           "Int",
	KindFloat:         "Float",
	KindString:        "String",
	KindChar:          "Char",
	KindBool:          "Bool",
	KindUnary:         "Unary",
	KindBinary:        "Binary",
	KindCall:          "Call",
}

// String implements [fmt.Stringer] for [Kind].
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// MarshalText implements [encoding.TextMarshaler] for [Kind].
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
