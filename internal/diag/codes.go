package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1004

	// Парсерные
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynMalformedDeclaration Code = 2002
	SynExpectSemicolon      Code = 2012
	SynUnexpectedTopLevel   Code = 2101
	SynExpectIdentifier     Code = 2102
	SynExpectType           Code = 2202
	SynExpectExpression     Code = 2203
	SynUnclosedDelimiter    Code = 2204

	// Семантические
	SemaInfo               Code = 3000
	SemaDuplicateSymbol    Code = 3002
	SemaUnresolvedSymbol   Code = 3005
	SemaGenericArity       Code = 3010
	SemaAmbiguousOverload  Code = 3011
	SemaMissingReturn      Code = 3012
	SemaTypeMismatch       Code = 3013
	SemaPoisonedDependency Code = 3014
	SemaNotAType           Code = 3015
	SemaNoOverload         Code = 3016
	SemaMissingTraitMethod Code = 3017
	SemaBoundNotSatisfied  Code = 3018
	SemaUnknownField       Code = 3019
	SemaCyclicDependency   Code = 3020
	SemaUnknownVariable    Code = 3021
	SemaNotCallable        Code = 3022

	// I/O
	IOLoadFileError Code = 4001

	// Проект
	ProjManifest        Code = 5001
	ProjCompilerVersion Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	LexInfo:                 "Lexical information",
	LexUnknownChar:          "Unknown character",
	LexUnterminatedString:   "Unterminated string",
	LexBadNumber:            "Bad number",
	SynInfo:                 "Syntax information",
	SynUnexpectedToken:      "Unexpected token",
	SynMalformedDeclaration: "Malformed declaration",
	SynExpectSemicolon:      "Expected semicolon",
	SynUnexpectedTopLevel:   "Unexpected top-level construct",
	SynExpectIdentifier:     "Expected identifier",
	SynExpectType:           "Expected type",
	SynExpectExpression:     "Expected expression",
	SynUnclosedDelimiter:    "Unclosed delimiter",
	SemaInfo:                "Semantic information",
	SemaDuplicateSymbol:     "Duplicate symbol",
	SemaUnresolvedSymbol:    "Unknown symbol",
	SemaGenericArity:        "Wrong number of generic arguments",
	SemaAmbiguousOverload:   "Ambiguous overload",
	SemaMissingReturn:       "Missing return in function",
	SemaTypeMismatch:        "Type mismatch",
	SemaPoisonedDependency:  "Depends on a failed symbol",
	SemaNotAType:            "Symbol is not a type",
	SemaNoOverload:          "No matching overload",
	SemaMissingTraitMethod:  "Missing trait method",
	SemaBoundNotSatisfied:   "Generic bound not satisfied",
	SemaUnknownField:        "Unknown field",
	SemaCyclicDependency:    "Symbol never finalized",
	SemaUnknownVariable:     "Unknown variable",
	SemaNotCallable:         "Symbol is not a function",
	IOLoadFileError:         "Failed to load file",
	ProjManifest:            "Invalid project manifest",
	ProjCompilerVersion:     "Compiler version not accepted by project",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
