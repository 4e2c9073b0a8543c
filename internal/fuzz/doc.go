// Package fuzztests houses Go fuzz harnesses for the front end: source ->
// lexer -> parser, and whole compilations through the registry. They guard
// against panics, hangs and compilations that never settle.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
