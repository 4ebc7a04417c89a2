package rules

import (
	"cuelang.org/go/cue/token"
)

// Parse parses rule text into a tree. Empty text parses as True.
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return &Bool{Value: true}, nil
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != token.EOF {
		return nil, p.unexpected()
	}
	return n, nil
}

type parser struct {
	toks []tok
	pos  int
}

func (p *parser) peek() tok { return p.toks[p.pos] }

func (p *parser) peekAt(n int) tok {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() tok {
	t := p.toks[p.pos]
	if t.kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind token.Token) (tok, error) {
	if p.peek().kind != kind {
		return tok{}, p.unexpected()
	}
	return p.next(), nil
}

func (p *parser) unexpected() error {
	t := p.peek()
	if t.kind == token.EOF {
		return newError(ErrCodeSyntax, "unexpected end of rule")
	}
	return newError(ErrCodeSyntax, "unexpected %q at offset %d", tokenText(t.kind, t.lit), t.off)
}

func (p *parser) parseOr() (Node, error) {
	return p.parseChain(token.LOR, OpOr, p.parseAnd)
}

func (p *parser) parseAnd() (Node, error) {
	return p.parseChain(token.LAND, OpAnd, p.parseNot)
}

// parseChain keeps one level of a same-operator chain as a single BoolOp.
// Parenthesized chains of the same operator stay nested until rewrite.
func (p *parser) parseChain(kind token.Token, op BoolOperator, operand func() (Node, error)) (Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != kind {
		return first, nil
	}
	terms := []Node{first}
	for p.peek().kind == kind {
		p.next()
		n, err := operand()
		if err != nil {
			return nil, err
		}
		terms = append(terms, n)
	}
	return &BoolOp{Op: op, Terms: terms}, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().kind == token.NOT {
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	}
	return p.parseCompare()
}

var compareOps = map[token.Token]CompareOperator{
	token.EQL: OpEq,
	token.NEQ: OpNotEq,
	token.LSS: OpLess,
	token.LEQ: OpLessEq,
	token.GTR: OpGreater,
	token.GEQ: OpGreaterEq,
	token.IN:  OpIn,
}

func (p *parser) parseCompare() (Node, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for {
		var op CompareOperator
		switch t := p.peek(); {
		case t.kind == token.NOT && p.peekAt(1).kind == token.IN:
			p.next()
			p.next()
			op = OpNotIn
		default:
			o, ok := compareOps[t.kind]
			if !ok {
				return left, nil
			}
			p.next()
			op = o
		}
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &Compare{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parsePostfix() (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case token.LPAREN:
			id, ok := n.(*Ident)
			if !ok {
				return nil, p.unexpected()
			}
			p.next()
			call, err := p.parseCallArgs(id.Name)
			if err != nil {
				return nil, err
			}
			n = call
		case token.LBRACK:
			p.next()
			key, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACK); err != nil {
				return nil, err
			}
			n = &Subscript{Obj: n, Key: key}
		case token.PERIOD:
			p.next()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			n = &Attr{Obj: n, Name: name.lit}
		default:
			return n, nil
		}
	}
}

func (p *parser) parseCallArgs(name string) (*Call, error) {
	call := &Call{Name: name}
	for p.peek().kind != token.RPAREN {
		if p.peek().kind == token.IDENT && p.peekAt(1).kind == token.BIND {
			kw := p.next().lit
			p.next()
			v, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			call.Kwargs = append(call.Kwargs, Kwarg{Name: kw, Value: v})
		} else {
			if len(call.Kwargs) > 0 {
				return nil, newError(ErrCodeSyntax, "positional argument follows keyword argument in %s()", name)
			}
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		if p.peek().kind != token.COMMA {
			break
		}
		p.next()
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.peek()
	switch t.kind {
	case token.IDENT:
		p.next()
		return &Ident{Name: t.lit}, nil
	case token.STRING:
		p.next()
		return &Str{Value: t.str}, nil
	case token.INT:
		p.next()
		return &Num{Value: t.num}, nil
	case token.FLOAT:
		p.next()
		return &Float{Value: t.flt}, nil
	case token.TRUE, token.FALSE:
		p.next()
		return &Bool{Value: t.kind == token.TRUE}, nil
	case token.LPAREN:
		p.next()
		elems, trailing, err := p.parseSequence(token.RPAREN)
		if err != nil {
			return nil, err
		}
		if len(elems) == 1 && !trailing {
			return elems[0], nil
		}
		return &Tuple{Elems: elems}, nil
	case token.LBRACK:
		p.next()
		elems, _, err := p.parseSequence(token.RBRACK)
		if err != nil {
			return nil, err
		}
		return &List{Elems: elems}, nil
	}
	return nil, p.unexpected()
}

// parseSequence reads comma-separated expressions up to the closing token.
// trailing reports a comma directly before it.
func (p *parser) parseSequence(closing token.Token) (elems []Node, trailing bool, err error) {
	for p.peek().kind != closing {
		n, err := p.parseOr()
		if err != nil {
			return nil, false, err
		}
		elems = append(elems, n)
		trailing = false
		if p.peek().kind != token.COMMA {
			break
		}
		p.next()
		trailing = true
	}
	if _, err := p.expect(closing); err != nil {
		return nil, false, err
	}
	if closing == token.RPAREN && len(elems) == 0 {
		return nil, false, newError(ErrCodeSyntax, "empty parentheses")
	}
	return elems, trailing, nil
}
