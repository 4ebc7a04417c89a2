package rules

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/scanner"
	"cuelang.org/go/cue/token"
)

// tok is one lexed token. Operator words (and, or, not) are folded onto the
// symbol tokens so the parser sees one spelling.
type tok struct {
	kind token.Token
	lit  string
	str  string
	num  int64
	flt  float64
	off  int
}

// stripComment drops everything after a '#' that is outside a string and
// turns line breaks and tabs into spaces.
func stripComment(src string) string {
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == 0 && c == '#':
			src = src[:i]
		}
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, src)
}

// lex tokenizes rule text with the CUE scanner, which shares the rule
// language's operators, literals and identifier shape.
func lex(src string) ([]tok, error) {
	text := []byte(stripComment(src))
	file := token.NewFile("rule", -1, len(text))

	var firstErr error
	var s scanner.Scanner
	s.Init(file, text, func(pos token.Pos, msg string, args []interface{}) {
		if firstErr == nil {
			firstErr = newError(ErrCodeSyntax, "at offset %d: %s", pos.Offset(), fmt.Sprintf(msg, args...))
		}
	}, scanner.DontInsertCommas)

	var out []tok
	for {
		pos, kind, lit := s.Scan()
		if firstErr != nil {
			return nil, firstErr
		}
		t := tok{kind: kind, lit: lit, off: pos.Offset()}
		switch kind {
		case token.EOF:
			return append(out, t), nil
		case token.IDENT:
			t = classifyWord(t)
		case token.TRUE, token.FALSE, token.IN:
			t.lit = kind.String()
		case token.IF, token.FOR, token.LET, token.FUNC, token.NULL:
			t.kind = token.IDENT
		case token.INT:
			n, err := strconv.ParseInt(strings.ReplaceAll(lit, "_", ""), 0, 64)
			if err != nil {
				return nil, newError(ErrCodeSyntax, "bad integer %q", lit)
			}
			t.num = n
		case token.FLOAT:
			f, err := strconv.ParseFloat(strings.ReplaceAll(lit, "_", ""), 64)
			if err != nil {
				return nil, newError(ErrCodeSyntax, "bad number %q", lit)
			}
			t.flt = f
		case token.STRING:
			v, err := literal.Unquote(lit)
			if err != nil {
				return nil, newError(ErrCodeSyntax, "bad string %s: %v", lit, err)
			}
			t.str = v
		case token.LAND, token.LOR, token.NOT, token.EQL, token.NEQ, token.LSS, token.LEQ,
			token.GTR, token.GEQ, token.LPAREN, token.RPAREN, token.LBRACK, token.RBRACK,
			token.COMMA, token.BIND, token.PERIOD:
			t.lit = kind.String()
		default:
			return nil, newError(ErrCodeSyntax, "unexpected %q at offset %d", tokenText(kind, lit), t.off)
		}
		out = append(out, t)
	}
}

func classifyWord(t tok) tok {
	switch strings.ToLower(t.lit) {
	case "and":
		t.kind = token.LAND
	case "or":
		t.kind = token.LOR
	case "not":
		t.kind = token.NOT
	}
	switch t.lit {
	case "True":
		t.kind = token.TRUE
	case "False":
		t.kind = token.FALSE
	}
	return t
}

func tokenText(kind token.Token, lit string) string {
	if lit != "" {
		return lit
	}
	return kind.String()
}
