// Package scanner implements the lexical scanner for polyglot source files, reading the raw
// source text and producing the full sequence of tokens consumed by the parser.
//
// The scanner is a state-function based scanner similar to that described by Rob Pike
// in his talk [Lexical Scanning in Go], based on the implementation of text/template in the Go
// standard library.
//
// The scanner proceeds one utf-8 rune at a time until a particular token is recognised,
// the token is then "emitted" onto the token list.
//
// The state of the scanner is maintained between token emits unlike a more conventional
// switch-based scanner that must determine it's current state from scratch in every loop.
//
// Unlike the approach described in the talk, the state machine runs to completion on the
// calling goroutine. A compilation needs every token before parsing can begin and the first
// lexical error aborts the whole run, so there is nothing for a second goroutine to overlap with.
//
// [Lexical Scanning in Go]: https://go.dev/talks/2011/lex.slide#1
package scanner

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/syntax"
	"go.followtheprocess.codes/polyglot/internal/syntax/token"
)

const eof = rune(-1) // eof signifies we have reached the end of the input.

// scanFn represents the state of the scanner as a function that does the work
// associated with the current state, then returns the next state.
type scanFn func(*Scanner) scanFn

// Scanner is the polyglot source scanner.
//
// A Scanner is single use, create a new one with [New] for every source.
type Scanner struct {
	err             diag.Diagnostic // The first lexical error, if any
	name            string          // Name of the file
	src             []byte          // Raw source text
	tokens          []token.Token   // Tokens emitted so far
	start           int             // The start position of the current token
	pos             int             // Current scanner position in src (bytes, 0 indexed)
	line            int             // Current line number, 1 indexed
	lineOffset      int             // Offset at which the current line started
	startLine       int             // Line on which the current token started
	startLineOffset int             // Offset at which the line containing the current token started
	symbols         map[rune]token.Kind
}

// Option is a functional option for configuring a [Scanner].
type Option func(*Scanner)

// WithSymbols makes the scanner accept each rune in symbols as an alternative
// spelling of the operator or punctuation kind it maps to, so a full width '（'
// may stand in for '('.
//
// The emitted token carries the usual ASCII spelling so later phases never see
// the alias, only its position.
func WithSymbols(symbols map[rune]token.Kind) Option {
	return func(s *Scanner) {
		s.symbols = symbols
	}
}

// New returns a new [Scanner] ready to tokenize src.
func New(name string, src []byte, options ...Option) *Scanner {
	s := &Scanner{
		name:      name,
		src:       src,
		line:      1,
		startLine: 1,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Tokenize scans the entire input, returning every token in source order terminated
// by a single [token.EOF].
//
// Scanning stops at the first lexical error, in which case the returned tokens are nil
// and the error is a [diag.LexError].
func (s *Scanner) Tokenize() ([]token.Token, diag.Diagnostic) {
	for state := scanStart; state != nil && s.err == nil; {
		state = state(s)
	}

	if s.err != nil {
		return nil, s.err
	}

	return s.tokens, nil
}

// next returns the next utf8 rune in the input, or [eof], and advances the scanner
// over that rune such that successive calls to [Scanner.next] iterate through
// src one rune at a time.
func (s *Scanner) next() rune {
	if s.pos >= len(s.src) {
		return eof
	}

	char, width := utf8.DecodeRune(s.src[s.pos:])
	if char == utf8.RuneError && width == 1 {
		s.errorf("invalid utf-8 encoding at byte offset %d", s.pos)
		return eof
	}

	s.pos += width

	if char == '\n' {
		s.line++
		s.lineOffset = s.pos
	}

	return char
}

// peek returns the next utf8 rune in the input, or [eof], but does not
// advance the scanner.
//
// Successive calls to peek simply return the same rune again and again.
func (s *Scanner) peek() rune {
	if s.pos >= len(s.src) {
		return eof
	}

	char, _ := utf8.DecodeRune(s.src[s.pos:])

	return char
}

// rest returns the rest of the input from the current scanner position,
// or nil if the scanner is at EOF.
func (s *Scanner) rest() []byte {
	if s.pos >= len(s.src) {
		return nil
	}

	return s.src[s.pos:]
}

// skip ignores any characters for which the predicate returns true, stopping at the
// first one that returns false such that after it returns, [Scanner.next] returns the
// first 'false' char.
//
// The scanner start position is brought up to the current position before returning, effectively
// ignoring everything it's travelled over in the meantime.
func (s *Scanner) skip(predicate func(r rune) bool) {
	for predicate(s.peek()) {
		s.next()
	}

	s.ignore()
}

// ignore discards everything between the start of the current token and the current
// position.
func (s *Scanner) ignore() {
	s.start = s.pos
	s.startLine = s.line
	s.startLineOffset = s.lineOffset
}

// takeWhile consumes characters so long as the predicate returns true, stopping at the
// first one that returns false such that after it returns, [Scanner.next] returns the first 'false' rune.
func (s *Scanner) takeWhile(predicate func(r rune) bool) {
	for predicate(s.peek()) {
		s.next()
	}
}

// takeUntil consumes characters until it hits any of the specified runes.
//
// It stops before it consumes the first specified rune such that after it returns,
// the next call to [Scanner.next] returns the offending rune.
//
//	s.takeUntil('\n', eof) // Consume runes until you hit a newline or the end of the input
func (s *Scanner) takeUntil(runes ...rune) {
	for {
		next := s.peek()
		if slices.Contains(runes, next) {
			return
		}

		s.next()
	}
}

// accept consumes the next rune if it is r, reporting whether it did so.
func (s *Scanner) accept(r rune) bool {
	if s.peek() == r {
		s.next()
		return true
	}

	return false
}

// emit appends a token whose value is the source text it covers.
func (s *Scanner) emit(kind token.Kind) {
	s.emitValue(kind, string(s.src[s.start:s.pos]))
}

// emitValue appends a token with an explicit value, using the scanner's internal
// state to populate position information.
func (s *Scanner) emitValue(kind token.Kind, value string) {
	startCol, endCol := s.columns()

	s.tokens = append(s.tokens, token.Token{
		Kind:     kind,
		Value:    value,
		Start:    s.start,
		End:      s.pos,
		Line:     s.startLine,
		StartCol: startCol,
		EndCol:   endCol,
	})

	s.ignore()
}

// columns returns the 1 indexed rune columns of the first and last rune of
// the current token.
//
// A token that runs over a line break (only possible in an error) is clipped to
// the line it started on.
func (s *Scanner) columns() (startCol, endCol int) {
	startCol = 1 + utf8.RuneCount(s.src[s.startLineOffset:s.start])

	text := s.src[s.start:s.pos]
	if i := bytes.IndexByte(text, '\n'); i >= 0 && s.pos-s.start > 1 {
		text = text[:i]
	}

	width := utf8.RuneCount(text)
	if width <= 1 {
		return startCol, startCol
	}

	return startCol, startCol + width - 1
}

// error records the first lexical error, pointing at the token currently being scanned.
func (s *Scanner) error(msg string) {
	if s.err != nil {
		return
	}

	startCol, endCol := s.columns()

	s.err = diag.LexError{
		Msg: msg,
		Pos: syntax.Position{
			Name:     s.name,
			Offset:   s.start,
			Line:     s.startLine,
			StartCol: startCol,
			EndCol:   endCol,
		},
	}
}

// errorf calls error with a formatted message.
func (s *Scanner) errorf(format string, a ...any) {
	s.error(fmt.Sprintf(format, a...))
}

// scanStart is the initial state of the scanner.
func scanStart(s *Scanner) scanFn {
	s.skip(isLineSpace)

	switch char := s.next(); {
	case char == eof:
		s.emit(token.EOF)
		return nil
	case char == '\n':
		s.emit(token.Newline)
		return scanStart
	case char == '/' && s.peek() == '/':
		return scanLineComment
	case char == '/' && s.peek() == '*':
		return scanBlockComment
	case char == '"':
		return scanString
	case char == '\'':
		return scanChar
	case s.symbols[char] != token.EOF:
		kind := s.symbols[char]
		s.emitValue(kind, kind.Spelling())

		return scanStart
	case isDigit(char):
		return scanNumber
	case isIdentStart(char):
		return scanIdent
	default:
		return scanSymbol(s, char)
	}
}

// scanLineComment scans a '//' comment, comments produce no tokens.
//
// The first '/' has already been consumed.
func scanLineComment(s *Scanner) scanFn {
	s.takeUntil('\n', eof)
	s.ignore()

	return scanStart
}

// scanBlockComment scans a '/* ... */' comment which may run over multiple lines.
//
// The first '/' has already been consumed.
func scanBlockComment(s *Scanner) scanFn {
	s.next() // '*'

	for {
		switch s.next() {
		case eof:
			s.error("unterminated block comment")
			return nil
		case '*':
			if s.accept('/') {
				s.ignore()
				return scanStart
			}
		}
	}
}

// scanSymbol scans an operator or punctuation symbol beginning with char, which has
// already been consumed.
func scanSymbol(s *Scanner, char rune) scanFn {
	var kind token.Kind

	switch char {
	case '>':
		switch {
		case s.accept('>'):
			kind = token.Import
		case s.accept('='):
			kind = token.GreaterEq
		default:
			kind = token.Greater
		}
	case '<':
		switch {
		case s.accept('<'):
			kind = token.Break
		case s.accept('-'):
			kind = token.Return
		case s.accept('='):
			kind = token.LessEq
		default:
			kind = token.Less
		}
	case '-':
		switch {
		case s.accept('>'):
			kind = token.Continue
		case s.accept('='):
			kind = token.MinusEq
		default:
			kind = token.Minus
		}
	case '+':
		kind = token.Plus
		if s.accept('=') {
			kind = token.PlusEq
		}
	case ':':
		kind = token.Colon
		if s.accept('=') {
			kind = token.Define
		}
	case '=':
		kind = token.Eq
		if s.accept('=') {
			kind = token.EqEq
		}
	case '!':
		kind = token.Bang
		if s.accept('=') {
			kind = token.NotEq
		}
	case '&':
		kind = token.Amp
		if s.accept('&') {
			kind = token.AndAnd
		}
	case '|':
		if !s.accept('|') {
			s.errorf("unrecognised character %q", char)
			return nil
		}

		kind = token.OrOr
	case '/':
		kind = token.Slash
	case '?':
		kind = token.Question
	case '*':
		kind = token.Star
	case '@':
		kind = token.At
	case '%':
		kind = token.Percent
	case '#':
		kind = token.Hash
	case '^':
		kind = token.Caret
	case '$':
		kind = token.Dollar
	case '(':
		kind = token.LeftParen
	case ')':
		kind = token.RightParen
	case '{':
		kind = token.LeftBrace
	case '}':
		kind = token.RightBrace
	case '[':
		kind = token.LeftBracket
	case ']':
		kind = token.RightBracket
	case ',':
		kind = token.Comma
	case ';':
		kind = token.Semicolon
	case '.':
		kind = token.Dot
	default:
		s.errorf("unrecognised character %q", char)
		return nil
	}

	s.emit(kind)

	return scanStart
}

// scanIdent scans an identifier or keyword, the first character has already been consumed.
func scanIdent(s *Scanner) scanFn {
	s.takeWhile(isIdent)

	kind, _ := token.Keyword(string(s.src[s.start:s.pos]))
	s.emit(kind)

	return scanStart
}

// scanNumber scans an integer or float literal, the first digit has already been consumed.
//
// A '.' only continues the number when it is followed by a digit, so "1." is an [token.Int]
// followed by a [token.Dot].
func scanNumber(s *Scanner) scanFn {
	s.takeWhile(isDigit)

	kind := token.Int

	if rest := s.rest(); len(rest) >= 2 && rest[0] == '.' && isDigit(rune(rest[1])) {
		s.next() // '.'
		s.takeWhile(isDigit)

		kind = token.Float
	}

	if isIdentStart(s.peek()) {
		s.takeWhile(isIdent)
		s.errorf("invalid number literal %q", string(s.src[s.start:s.pos]))

		return nil
	}

	s.emit(kind)

	return scanStart
}

// scanString scans a double quoted string literal, the opening quote has already been consumed.
//
// The emitted token's value is the decoded contents, without the quotes.
func scanString(s *Scanner) scanFn {
	var value strings.Builder

	for {
		switch char := s.next(); char {
		case eof:
			s.error("unterminated string literal")
			return nil
		case '\n':
			s.error("string literal cannot span lines")
			return nil
		case '"':
			s.emitValue(token.String, value.String())
			return scanStart
		case '\\':
			decoded, ok := s.escape('"')
			if !ok {
				return nil
			}

			value.WriteRune(decoded)
		default:
			value.WriteRune(char)
		}
	}
}

// scanChar scans a single quoted character literal, the opening quote has already been consumed.
func scanChar(s *Scanner) scanFn {
	var value rune

	switch char := s.next(); char {
	case eof, '\n':
		s.error("unterminated character literal")
		return nil
	case '\'':
		s.error("empty character literal")
		return nil
	case '\\':
		decoded, ok := s.escape('\'')
		if !ok {
			return nil
		}

		value = decoded
	default:
		value = char
	}

	if !s.accept('\'') {
		s.error("character literal must contain exactly one character")
		return nil
	}

	s.emitValue(token.Char, string(value))

	return scanStart
}

// escape decodes the escape sequence following a '\', quote is the quote character
// of the enclosing literal which may also be escaped.
func (s *Scanner) escape(quote rune) (rune, bool) {
	switch char := s.next(); char {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '\\':
		return '\\', true
	case quote:
		return quote, true
	case eof:
		s.error("unterminated escape sequence")
		return 0, false
	default:
		s.errorf("unknown escape sequence \\%c", char)
		return 0, false
	}
}

// isLineSpace reports whether r is a non line terminating whitespace character,
// imagine [unicode.IsSpace] but without '\n'.
func isLineSpace(r rune) bool {
	return r != '\n' && r != eof && unicode.IsSpace(r)
}

// isIdentStart reports whether r may begin an identifier.
func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isIdent reports whether r is a valid identifier character.
func isIdent(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// isDigit reports whether r is a valid ASCII digit.
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
