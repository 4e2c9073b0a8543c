package lexer

// skipTrivia пропускает пробелы, // и /* */ комментарии.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			lx.cursor.Bump()
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case b == '/' && lx.cursor.PeekAt(1) == '*':
			lx.cursor.Bump()
			lx.cursor.Bump()
			for !lx.cursor.EOF() && (lx.cursor.Peek() != '*' || lx.cursor.PeekAt(1) != '/') {
				lx.cursor.Bump()
			}
			lx.cursor.Bump()
			lx.cursor.Bump()
		default:
			return
		}
	}
}
