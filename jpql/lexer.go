// Package jpql implements the embedded-query parser: a small subset of a
// JPQL-like declarative query language — SELECT/UPDATE/DELETE with
// WHERE/JOIN/GROUP BY/HAVING/ORDER BY — parsed into a query.LogicalQuery.
package jpql

import (
	"strconv"
	"strings"

	"github.com/memris/memris/memrerr"
)

// tokenKind identifies one lexical token class.
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokString
	tokInt
	tokDecimal
	tokNamedParam
	tokPositionalParam
	tokOp // =, <>, !=, <, <=, >, >=
	tokLParen
	tokRParen
	tokComma
	tokDot
)

type token struct {
	kind tokenKind
	text string // normalized uppercase for tokKeyword/tokOp; raw otherwise
	ival int64
	fval float64
	pos  int
}

var keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "UPDATE": true, "SET": true,
	"DELETE": true, "LIKE": true, "ILIKE": true, "NOT": true, "IN": true,
	"BETWEEN": true, "IS": true, "NULL": true, "AND": true, "OR": true,
	"DISTINCT": true, "COUNT": true, "JOIN": true, "LEFT": true, "INNER": true,
	"FETCH": true, "AS": true, "ORDER": true, "BY": true, "GROUP": true,
	"HAVING": true, "ASC": true, "DESC": true, "TRUE": true, "FALSE": true,
}

// lexer tokenizes a JPQL-subset query string.
type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) at(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == '.'
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

// next returns the next token, or a tokEOF token at end of input.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}
	r := l.src[l.pos]

	switch {
	case r == '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case r == ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case r == ',':
		l.pos++
		return token{kind: tokComma, pos: start}, nil
	case r == '\'':
		return l.lexString()
	case r == ':':
		l.pos++
		nameStart := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokNamedParam, text: string(l.src[nameStart:l.pos]), pos: start}, nil
	case r == '?':
		l.pos++
		numStart := l.pos
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
		n, _ := strconv.ParseInt(string(l.src[numStart:l.pos]), 10, 64)
		return token{kind: tokPositionalParam, ival: n, pos: start}, nil
	case r >= '0' && r <= '9':
		return l.lexNumber()
	case r == '=' :
		l.pos++
		return token{kind: tokOp, text: "=", pos: start}, nil
	case r == '<':
		l.pos++
		if l.peekRune() == '>' {
			l.pos++
			return token{kind: tokOp, text: "<>", pos: start}, nil
		}
		if l.peekRune() == '=' {
			l.pos++
			return token{kind: tokOp, text: "<=", pos: start}, nil
		}
		return token{kind: tokOp, text: "<", pos: start}, nil
	case r == '>':
		l.pos++
		if l.peekRune() == '=' {
			l.pos++
			return token{kind: tokOp, text: ">=", pos: start}, nil
		}
		return token{kind: tokOp, text: ">", pos: start}, nil
	case r == '!':
		l.pos++
		if l.peekRune() == '=' {
			l.pos++
			return token{kind: tokOp, text: "!=", pos: start}, nil
		}
		return token{}, memrerr.New(memrerr.InvalidQuery, "", "unexpected '!' in query")
	case isIdentStart(r):
		idStart := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		text := string(l.src[idStart:l.pos])
		upper := strings.ToUpper(text)
		if upper == "NOT" && l.lookaheadKeyword("LIKE") {
			l.consumeKeyword()
			return token{kind: tokKeyword, text: "NOT LIKE", pos: start}, nil
		}
		if upper == "NOT" && l.lookaheadKeyword("ILIKE") {
			l.consumeKeyword()
			return token{kind: tokKeyword, text: "NOT ILIKE", pos: start}, nil
		}
		if upper == "NOT" && l.lookaheadKeyword("IN") {
			l.consumeKeyword()
			return token{kind: tokKeyword, text: "NOT IN", pos: start}, nil
		}
		if upper == "IS" && l.lookaheadKeyword("NOT") {
			l.consumeKeyword()
			if l.lookaheadKeyword("NULL") {
				l.consumeKeyword()
				return token{kind: tokKeyword, text: "IS NOT NULL", pos: start}, nil
			}
			return token{}, memrerr.New(memrerr.InvalidQuery, "", "expected NULL after IS NOT")
		}
		if upper == "IS" && l.lookaheadKeyword("NULL") {
			l.consumeKeyword()
			return token{kind: tokKeyword, text: "IS NULL", pos: start}, nil
		}
		// ORDER and GROUP are only keywords when they head an ORDER BY /
		// GROUP BY clause; otherwise they are ordinary identifiers, so an
		// entity can legitimately be named Order or Group.
		if (upper == "ORDER" || upper == "GROUP") && !l.lookaheadKeyword("BY") {
			return token{kind: tokIdent, text: text, pos: start}, nil
		}
		if keywords[upper] {
			return token{kind: tokKeyword, text: upper, pos: start}, nil
		}
		return token{kind: tokIdent, text: text, pos: start}, nil
	default:
		return token{}, memrerr.New(memrerr.InvalidQuery, "", "unexpected character in query: "+string(r))
	}
}

// lookaheadKeyword peeks past whitespace to see whether the next identifier
// equals kw (case-insensitive), without consuming it.
func (l *lexer) lookaheadKeyword(kw string) bool {
	save := l.pos
	defer func() { l.pos = save }()
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	return strings.EqualFold(string(l.src[start:l.pos]), kw)
}

func (l *lexer) consumeKeyword() {
	l.skipSpace()
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
}

// lexString lexes a single-quoted string literal with doubled-quote
// escaping.
func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, memrerr.New(memrerr.InvalidQuery, "", "unterminated string literal")
		}
		r := l.src[l.pos]
		if r == '\'' {
			if l.at(1) == '\'' {
				sb.WriteRune('\'')
				l.pos += 2
				continue
			}
			l.pos++
			break
		}
		sb.WriteRune(r)
		l.pos++
	}
	return token{kind: tokString, text: sb.String(), pos: start}, nil
}

// lexNumber lexes a numeric literal: an integer for whole numbers, a
// decimal for fractions.
func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	isDecimal := false
	if l.peekRune() == '.' && l.at(1) >= '0' && l.at(1) <= '9' {
		isDecimal = true
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	text := string(l.src[start:l.pos])
	if isDecimal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, memrerr.New(memrerr.InvalidQuery, "", "invalid decimal literal: "+text)
		}
		return token{kind: tokDecimal, fval: f, pos: start}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, memrerr.New(memrerr.InvalidQuery, "", "invalid integer literal: "+text)
	}
	return token{kind: tokInt, ival: n, pos: start}, nil
}
