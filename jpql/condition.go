package jpql

import (
	"github.com/memris/memris/query"
)

// parseCondition parses one WHERE/HAVING leaf condition: a property path,
// a comparison/keyword operator, and its argument(s).
func (p *Parser) parseCondition(alias string) (query.Condition, error) {
	path, err := p.parsePath()
	if err != nil {
		return query.Condition{}, err
	}
	prop := stripAlias(path, alias)

	switch {
	case p.cur().kind == tokOp:
		opText := p.advance().text
		op, ok := comparisonOps[opText]
		if !ok {
			return query.Condition{}, p.fail("unsupported comparison operator: " + opText)
		}
		val, err := p.parseArgValue()
		if err != nil {
			return query.Condition{}, err
		}
		return query.Condition{Property: prop, Operator: op, Arg: val}, nil

	case p.atKeyword("LIKE"):
		p.advance()
		val, err := p.parseArgValue()
		if err != nil {
			return query.Condition{}, err
		}
		return query.Condition{Property: prop, Operator: query.OpLike, Arg: val}, nil

	case p.atKeyword("ILIKE"):
		p.advance()
		val, err := p.parseArgValue()
		if err != nil {
			return query.Condition{}, err
		}
		return query.Condition{Property: prop, Operator: query.OpLike, Arg: val, IgnoreCase: true}, nil

	case p.atKeyword("NOT LIKE"):
		p.advance()
		val, err := p.parseArgValue()
		if err != nil {
			return query.Condition{}, err
		}
		return query.Condition{Property: prop, Operator: query.OpNotLike, Arg: val}, nil

	case p.atKeyword("NOT ILIKE"):
		p.advance()
		val, err := p.parseArgValue()
		if err != nil {
			return query.Condition{}, err
		}
		return query.Condition{Property: prop, Operator: query.OpNotLike, Arg: val, IgnoreCase: true}, nil

	case p.atKeyword("IN"):
		p.advance()
		val, err := p.parseInList()
		if err != nil {
			return query.Condition{}, err
		}
		return query.Condition{Property: prop, Operator: query.OpIn, Arg: val}, nil

	case p.atKeyword("NOT IN"):
		p.advance()
		val, err := p.parseInList()
		if err != nil {
			return query.Condition{}, err
		}
		return query.Condition{Property: prop, Operator: query.OpNotIn, Arg: val}, nil

	case p.atKeyword("BETWEEN"):
		p.advance()
		lo, err := p.parseArgValue()
		if err != nil {
			return query.Condition{}, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return query.Condition{}, err
		}
		hi, err := p.parseArgValue()
		if err != nil {
			return query.Condition{}, err
		}
		return query.Condition{Property: prop, Operator: query.OpBetween, Arg: lo, ArgHigh: hi}, nil

	case p.atKeyword("IS NULL"):
		p.advance()
		return query.Condition{Property: prop, Operator: query.OpIsNull}, nil

	case p.atKeyword("IS NOT NULL"):
		p.advance()
		return query.Condition{Property: prop, Operator: query.OpIsNotNull}, nil

	default:
		return query.Condition{}, p.fail("expected comparison operator after property path")
	}
}

var comparisonOps = map[string]query.Operator{
	"=":  query.OpEQ,
	"<>": query.OpNE,
	"!=": query.OpNE,
	"<":  query.OpLT,
	"<=": query.OpLE,
	">":  query.OpGT,
	">=": query.OpGE,
}

// parseInList parses "( val, val, ... )" or a single bound parameter
// standing in for a whole collection.
func (p *Parser) parseInList() (query.ArgSlot, error) {
	if p.cur().kind != tokLParen {
		return p.parseArgValue()
	}
	p.advance()
	var literals []any
	for {
		v, err := p.parseLiteralOrParam()
		if err != nil {
			return query.ArgSlot{}, err
		}
		literals = append(literals, v)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur().kind != tokRParen {
		return query.ArgSlot{}, p.fail("expected ) to close IN list")
	}
	p.advance()
	return query.ArgSlot{HasLiteral: true, Literal: literals}, nil
}

// parseLiteralOrParam parses one IN-list element: either a literal value or
// a query.ParamRef placeholder resolved from the argument array at
// execution time (IN lists can mix literal and parameter elements).
func (p *Parser) parseLiteralOrParam() (any, error) {
	switch p.cur().kind {
	case tokNamedParam:
		name := p.advance().text
		idx, err := p.resolveNamedParam(name)
		if err != nil {
			return nil, err
		}
		return query.ParamRef{Index: idx}, nil
	case tokPositionalParam:
		n := p.advance().ival
		return query.ParamRef{Index: int(n) - 1}, nil
	default:
		return p.literalValue()
	}
}

func (p *Parser) literalValue() (any, error) {
	switch p.cur().kind {
	case tokString:
		return p.advance().text, nil
	case tokInt:
		return p.advance().ival, nil
	case tokDecimal:
		return p.advance().fval, nil
	case tokKeyword:
		switch p.cur().text {
		case "TRUE":
			p.advance()
			return true, nil
		case "FALSE":
			p.advance()
			return false, nil
		case "NULL":
			p.advance()
			return nil, nil
		}
	}
	return nil, p.fail("expected a literal value")
}

// parseArgValue parses a single argument: a named parameter, positional
// parameter, or bound literal.
func (p *Parser) parseArgValue() (query.ArgSlot, error) {
	switch p.cur().kind {
	case tokNamedParam:
		name := p.advance().text
		idx, err := p.resolveNamedParam(name)
		if err != nil {
			return query.ArgSlot{}, err
		}
		return query.ArgSlot{ParamIndex: idx}, nil
	case tokPositionalParam:
		n := p.advance().ival
		return query.ArgSlot{ParamIndex: int(n) - 1}, nil
	default:
		v, err := p.literalValue()
		if err != nil {
			return query.ArgSlot{}, err
		}
		return query.ArgSlot{HasLiteral: true, Literal: v}, nil
	}
}

// resolveNamedParam resolves a :name reference to its declared parameter
// index; an unresolved name is an invalid-query failure.
func (p *Parser) resolveNamedParam(name string) (int, error) {
	for i, n := range p.paramNames {
		if n == name {
			return i, nil
		}
	}
	return 0, p.fail("named parameter :" + name + " does not resolve to a declared method parameter")
}
