// Package token defines lexical token kinds for Ember sources.
//
// Invariants:
//   - Token.Span matches Text exactly, except for identifiers whose Text is
//     NFC-normalized and string literals whose Text is unquoted.
//   - Every operator character is its own Operator token. Consumers that need
//     multi-character operators ("==", "&&") join adjacent Operator tokens;
//     this keeps '<' and '>' unambiguous inside generic argument lists.
//   - "->" is lexed as Arrow, "::" as ColonColon, "#[" as HashBracket.
//   - Comments and whitespace never reach the token stream.
package token
