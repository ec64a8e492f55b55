package jpql

import (
	"strings"

	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/query"
)

// Parser parses one embedded-query string into a query.LogicalQuery.
type Parser struct {
	methodName string
	paramNames []string // declared method parameter names, in order
	modifying  bool

	toks []token
	pos  int
}

// NewParser returns a Parser for one repository method. paramNames gives
// the declared parameter names in argument order, used to resolve named
// parameters (a named reference must resolve to a declared parameter);
// modifying is the method's @Modifying-equivalent marker, required for
// UPDATE/DELETE statements.
func NewParser(methodName string, paramNames []string, modifying bool) *Parser {
	return &Parser{methodName: methodName, paramNames: paramNames, modifying: modifying}
}

func (p *Parser) fail(reason string) error {
	return memrerr.New(memrerr.InvalidQuery, p.methodName, reason)
}

// Parse tokenizes and parses src into a LogicalQuery.
func (p *Parser) Parse(src string) (*query.LogicalQuery, error) {
	if err := p.tokenize(src); err != nil {
		return nil, err
	}
	kw := p.peekKeyword()
	switch kw {
	case "SELECT":
		return p.parseSelect()
	case "UPDATE":
		return p.parseUpdate()
	case "DELETE":
		return p.parseDelete()
	default:
		return nil, p.fail("query must begin with SELECT, UPDATE, or DELETE")
	}
}

func (p *Parser) tokenize(src string) error {
	lx := newLexer(src)
	for {
		t, err := lx.next()
		if err != nil {
			return err
		}
		p.toks = append(p.toks, t)
		if t.kind == tokEOF {
			break
		}
	}
	return nil
}

func (p *Parser) cur() token { return p.toks[p.pos] }

func (p *Parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) peekKeyword() string {
	if p.cur().kind == tokKeyword {
		return p.cur().text
	}
	return ""
}

func (p *Parser) atKeyword(kw string) bool {
	return p.cur().kind == tokKeyword && p.cur().text == kw
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return p.fail("expected keyword " + kw)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur().kind != tokIdent {
		return "", p.fail("expected identifier")
	}
	return p.advance().text, nil
}

// ---------------------------- SELECT ----------------------------

func (p *Parser) parseSelect() (*query.LogicalQuery, error) {
	p.advance() // SELECT

	distinct := false
	if p.atKeyword("DISTINCT") {
		distinct = true
		p.advance()
	}

	isCount := false
	var projItems []query.ProjectionItem
	if p.atKeyword("COUNT") {
		isCount = true
		p.advance()
		if p.cur().kind != tokLParen {
			return nil, p.fail("expected ( after COUNT")
		}
		p.advance()
		for p.cur().kind != tokRParen {
			p.advance()
		}
		p.advance()
	} else {
		items, err := p.parseSelectList()
		if err != nil {
			return nil, err
		}
		projItems = items
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	entity, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	alias := entity
	if p.cur().kind == tokIdent {
		alias = p.advance().text
	}

	lq := &query.LogicalQuery{MethodName: p.methodName, Op: query.OpFind, Distinct: distinct}

	joins, err := p.parseJoins(alias)
	if err != nil {
		return nil, err
	}
	lq.Joins = joins

	if p.atKeyword("WHERE") {
		p.advance()
		conds, err := p.parseWhere(alias)
		if err != nil {
			return nil, err
		}
		lq.Conditions = conds
	}

	if p.atKeyword("GROUP") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		groupBy, err := p.parsePathList(alias)
		if err != nil {
			return nil, err
		}
		lq.GroupBy = groupBy
	}

	if p.atKeyword("HAVING") {
		p.advance()
		having, err := p.parseWhere(alias)
		if err != nil {
			return nil, err
		}
		lq.Having = having
	}

	if p.atKeyword("ORDER") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		ob, err := p.parseOrderBy(alias)
		if err != nil {
			return nil, err
		}
		lq.OrderBy = ob
	}

	if isCount {
		lq.Op = query.OpCount
		lq.ReturnKind = query.ReturnCount
	} else {
		lq.ReturnKind = query.ReturnList
		if len(projItems) > 1 {
			for _, item := range projItems {
				if item.Alias == "" {
					return nil, p.fail("projection requires aliases")
				}
			}
			lq.Projection = &query.Projection{Items: projItems}
		}
	}

	return lq, nil
}

// parseSelectList parses the select-item list (entity-alias shorthand or a
// comma-separated, aliased projection list). A bare "alias" or "alias.prop"
// select item with no AS alias yields a single unaliased item (the plain
// entity/property projection, not a multi-item projection needing aliases).
func (p *Parser) parseSelectList() ([]query.ProjectionItem, error) {
	var items []query.ProjectionItem
	for {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		item := query.ProjectionItem{Property: path}
		if p.atKeyword("AS") {
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			item.Alias = name
		}
		items = append(items, item)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

// parseJoins parses zero or more JOIN / LEFT JOIN [FETCH] clauses.
func (p *Parser) parseJoins(alias string) ([]query.Join, error) {
	var joins []query.Join
	for p.atKeyword("JOIN") || p.atKeyword("LEFT") || p.atKeyword("INNER") {
		jt := query.JoinInner
		if p.atKeyword("LEFT") {
			jt = query.JoinLeft
			p.advance()
		} else if p.atKeyword("INNER") {
			p.advance()
		}
		if err := p.expectKeyword("JOIN"); err != nil {
			return nil, err
		}
		if p.atKeyword("FETCH") {
			p.advance()
		}
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		joinAlias := path
		if p.cur().kind == tokIdent {
			joinAlias = p.advance().text
		}
		joins = append(joins, query.Join{PropertyPath: stripAlias(path, alias), Type: jt, TargetEntity: joinAlias})
	}
	return joins, nil
}

func stripAlias(path, alias string) string {
	prefix := alias + "."
	if strings.HasPrefix(path, prefix) {
		return path[len(prefix):]
	}
	return path
}

// parsePath parses a dotted identifier path (e.g. u.department.address.city).
func (p *Parser) parsePath() (string, error) {
	if p.cur().kind != tokIdent {
		return "", p.fail("expected identifier")
	}
	return p.advance().text, nil
}

func (p *Parser) parsePathList(alias string) ([]string, error) {
	var out []string
	for {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		out = append(out, stripAlias(path, alias))
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

func (p *Parser) parseOrderBy(alias string) ([]query.OrderBy, error) {
	var out []query.OrderBy
	for {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		dir := query.Asc
		if p.atKeyword("ASC") {
			p.advance()
		} else if p.atKeyword("DESC") {
			dir = query.Desc
			p.advance()
		}
		out = append(out, query.OrderBy{Property: stripAlias(path, alias), Direction: dir})
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

// ---------------------------- UPDATE ----------------------------

func (p *Parser) parseUpdate() (*query.LogicalQuery, error) {
	if !p.modifying {
		return nil, p.fail("UPDATE requires the modifying marker")
	}
	p.advance() // UPDATE
	_, err := p.expectIdent() // entity name
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.cur().kind == tokIdent {
		alias = p.advance().text
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}

	lq := &query.LogicalQuery{MethodName: p.methodName, Op: query.OpUpdate, ReturnKind: query.ReturnModifying}

	for {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		prop := stripAlias(path, alias)
		if err := p.expectOp("="); err != nil {
			return nil, err
		}
		val, err := p.parseArgValue()
		if err != nil {
			return nil, err
		}
		lq.Assignments = append(lq.Assignments, query.Assignment{Property: prop, Value: val})
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}

	if p.atKeyword("WHERE") {
		p.advance()
		conds, err := p.parseWhere(alias)
		if err != nil {
			return nil, err
		}
		lq.Conditions = conds
	}
	return lq, nil
}

func (p *Parser) expectOp(op string) error {
	if p.cur().kind != tokOp || p.cur().text != op {
		return p.fail("expected operator " + op)
	}
	p.advance()
	return nil
}

// ---------------------------- DELETE ----------------------------

func (p *Parser) parseDelete() (*query.LogicalQuery, error) {
	if !p.modifying {
		return nil, p.fail("DELETE requires the modifying marker")
	}
	p.advance() // DELETE
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	_, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.cur().kind == tokIdent {
		alias = p.advance().text
	}

	lq := &query.LogicalQuery{MethodName: p.methodName, Op: query.OpDelete, ReturnKind: query.ReturnModifying}
	if p.atKeyword("WHERE") {
		p.advance()
		conds, err := p.parseWhere(alias)
		if err != nil {
			return nil, err
		}
		lq.Conditions = conds
	}
	return lq, nil
}

// ---------------------------- WHERE / DNF ----------------------------

// boolExpr is the intermediate boolean-tree form before DNF flattening.
type boolExpr struct {
	leaf     *query.Condition
	and, or  bool
	children []*boolExpr
}

// parseWhere parses a boolean expression with standard precedence
// (OR < AND < NOT < primary) and flattens it into DNF: a flat
// condition list with a per-condition next-combinator.
func (p *Parser) parseWhere(alias string) ([]query.Condition, error) {
	expr, err := p.parseOr(alias)
	if err != nil {
		return nil, err
	}
	groups := toDNF(expr)
	return flattenDNF(groups), nil
}

func (p *Parser) parseOr(alias string) (*boolExpr, error) {
	left, err := p.parseAnd(alias)
	if err != nil {
		return nil, err
	}
	for p.atKeyword("OR") {
		p.advance()
		right, err := p.parseAnd(alias)
		if err != nil {
			return nil, err
		}
		left = &boolExpr{or: true, children: []*boolExpr{left, right}}
	}
	return left, nil
}

func (p *Parser) parseAnd(alias string) (*boolExpr, error) {
	left, err := p.parseNot(alias)
	if err != nil {
		return nil, err
	}
	for p.atKeyword("AND") {
		p.advance()
		right, err := p.parseNot(alias)
		if err != nil {
			return nil, err
		}
		left = &boolExpr{and: true, children: []*boolExpr{left, right}}
	}
	return left, nil
}

func (p *Parser) parseNot(alias string) (*boolExpr, error) {
	if p.atKeyword("NOT") {
		p.advance()
		inner, err := p.parseNot(alias)
		if err != nil {
			return nil, err
		}
		return negate(inner), nil
	}
	return p.parsePrimary(alias)
}

func (p *Parser) parsePrimary(alias string) (*boolExpr, error) {
	if p.cur().kind == tokLParen {
		p.advance()
		expr, err := p.parseOr(alias)
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokRParen {
			return nil, p.fail("expected )")
		}
		p.advance()
		return expr, nil
	}
	cond, err := p.parseCondition(alias)
	if err != nil {
		return nil, err
	}
	return &boolExpr{leaf: &cond}, nil
}

// negate applies NOT to a boolExpr, pushing it to the leaves (De Morgan) so
// the tree stays in AND/OR/leaf shape for DNF conversion.
func negate(e *boolExpr) *boolExpr {
	if e.leaf != nil {
		c := *e.leaf
		c.Operator = negateOperator(c.Operator)
		return &boolExpr{leaf: &c}
	}
	negated := make([]*boolExpr, len(e.children))
	for i, c := range e.children {
		negated[i] = negate(c)
	}
	return &boolExpr{and: e.or, or: e.and, children: negated}
}

func negateOperator(op query.Operator) query.Operator {
	switch op {
	case query.OpEQ:
		return query.OpNE
	case query.OpNE:
		return query.OpEQ
	case query.OpGT:
		return query.OpLE
	case query.OpGE:
		return query.OpLT
	case query.OpLT:
		return query.OpGE
	case query.OpLE:
		return query.OpGT
	case query.OpIn:
		return query.OpNotIn
	case query.OpNotIn:
		return query.OpIn
	case query.OpIsNull:
		return query.OpIsNotNull
	case query.OpIsNotNull:
		return query.OpIsNull
	case query.OpLike:
		return query.OpNotLike
	case query.OpNotLike:
		return query.OpLike
	default:
		return op
	}
}

// toDNF expands a boolExpr tree into disjunctive normal form: a slice of
// conjunctive groups, each a slice of leaf conditions.
func toDNF(e *boolExpr) [][]query.Condition {
	if e.leaf != nil {
		return [][]query.Condition{{*e.leaf}}
	}
	if e.or {
		var out [][]query.Condition
		for _, c := range e.children {
			out = append(out, toDNF(c)...)
		}
		return out
	}
	// AND: cartesian-product the children's DNF groups.
	product := [][]query.Condition{{}}
	for _, c := range e.children {
		childGroups := toDNF(c)
		var next [][]query.Condition
		for _, p := range product {
			for _, g := range childGroups {
				merged := make([]query.Condition, 0, len(p)+len(g))
				merged = append(merged, p...)
				merged = append(merged, g...)
				next = append(next, merged)
			}
		}
		product = next
	}
	return product
}

// flattenDNF serializes DNF groups into the flat condition list with
// per-condition next-combinator tags (AND within a group, OR between
// groups, terminal condition tagged None).
func flattenDNF(groups [][]query.Condition) []query.Condition {
	var out []query.Condition
	for gi, group := range groups {
		for ci, cond := range group {
			c := cond
			switch {
			case ci < len(group)-1:
				c.NextCombinator = query.CombinatorAnd
			case gi < len(groups)-1:
				c.NextCombinator = query.CombinatorOr
			default:
				c.NextCombinator = query.CombinatorNone
			}
			out = append(out, c)
		}
	}
	return out
}
