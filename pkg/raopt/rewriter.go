package raopt

import (
	"akdb/pkg/collab"
	"akdb/pkg/dberror"
	"akdb/pkg/logging"
)

// Rewriter applies the package's projection equivalences in a single
// forward pass. It is pure and total: Rewrite never returns an error, it
// always returns a valid (possibly unoptimized) expression.
type Rewriter struct {
	cfg    Config
	schema collab.SchemaProvider
}

// New creates a Rewriter. schema resolves a table's attribute names for
// the theta-join split; it may be nil, in which case any rule that needs
// schema information falls back to leaving the subtree unchanged.
func New(cfg Config, schema collab.SchemaProvider) *Rewriter {
	return &Rewriter{cfg: cfg, schema: schema}
}

// Rewrite rewrites expr and returns a new token slice; expr is not mutated.
func (r *Rewriter) Rewrite(expr Expression) Expression {
	log := logging.WithComponent("raopt")

	out := make(Expression, 0, len(expr))
	var pending [][]Token // FIFO: tokens to splice immediately before the next N operands

	for i := 0; i < len(expr); i++ {
		tok := expr[i]

		switch tok.Kind {
		case KindOperand:
			if len(pending) > 0 {
				out = append(out, pending[0]...)
				pending = pending[1:]
			}
			out = append(out, tok)

		case KindOperator:
			switch tok.Op {
			case OpProjection:
				i++
				if i >= len(expr) {
					log.Warn("projection with no following attribute list", "index", i-1)
					out = append(out, tok)
					break
				}
				out = r.applyProjection(out, tok, expr[i])

			case OpSelection:
				i++
				if i >= len(expr) {
					log.Warn("selection with no following condition", "index", i-1)
					out = append(out, tok)
					break
				}
				out = r.applySelection(out, tok, expr[i])

			case OpUnion, OpIntersect:
				out, pending = r.applySetOp(out, tok, pending)

			case OpThetaJoin:
				i++
				if i >= len(expr) {
					log.Warn("theta-join with no following condition", "index", i-1)
					out = append(out, tok)
					break
				}
				out, pending = r.applyThetaJoin(out, tok, expr[i], expr[i+1:], pending)

			case OpNaturalJoin, OpExcept, OpRename:
				out = append(out, tok)

			default:
				if !tok.Op.known() {
					logging.WithError(dberror.MalformedExpression(string(tok.Op))).
						Warn("passing token through unchanged")
				}
				out = append(out, tok)
			}

		default:
			// AttributeList/Condition tokens are only ever consumed as the
			// lookahead payload of the operator that precedes them; one
			// appearing on its own in the input is malformed.
			log.Warn("stray token outside operator context", "kind", tok.Kind.String())
			out = append(out, tok)
		}
	}
	return out
}

// applyProjection implements cascade elimination: a sequence of nested
// projections π[L1](π[L2](...π[Ln](R)...)) is only valid when L1 ⊆ L2 ⊆ ...
// ⊆ Ln, in which case only the outermost (L1, emitted first in this
// left-to-right traversal) has any effect. So once an outer projection's
// attribute list L' is already in the output, any projection encountered
// afterward whose own list L is a superset of L' (L' ⊆ L) adds nothing and
// is dropped — the already-kept outer projection subsumes it.
func (r *Rewriter) applyProjection(out Expression, op, attrList Token) Expression {
	if n := len(out); n >= 1 && out[n-1].Kind == KindAttributeList {
		lOuter := r.cfg.Tokenize(out[n-1].Payload)
		lCur := r.cfg.Tokenize(attrList.Payload)
		if IsSubset(lOuter, lCur) {
			return out
		}
	}
	return append(out, op, attrList)
}

// applySelection pushes a selection below the covering projection directly
// above it, when the projection's list carries every attribute the
// selection's condition references.
func (r *Rewriter) applySelection(out Expression, op, cond Token) Expression {
	if n := len(out); n >= 2 && out[n-2].Kind == KindOperator && out[n-2].Op == OpProjection &&
		out[n-1].Kind == KindAttributeList {
		l := r.cfg.Tokenize(out[n-1].Payload)
		condAttrs := r.cfg.ConditionAttrs(cond.Payload)
		if IsSubset(condAttrs, l) {
			piPair := append(Expression{}, out[n-2:n]...)
			rest := out[:n-2]
			next := append(Expression{}, rest...)
			next = append(next, op, cond)
			next = append(next, piPair...)
			return next
		}
	}
	return append(out, op, cond)
}

// applySetOp distributes a covering projection over union/intersect: a π,L
// pair that immediately precedes the set operator
// wraps both of its operands; rather than emit it once outside, the
// rewriter drops it and queues a copy for each of the two upcoming operands.
func (r *Rewriter) applySetOp(out Expression, op Token, pending [][]Token) (Expression, [][]Token) {
	if n := len(out); n >= 2 && out[n-2].Kind == KindOperator && out[n-2].Op == OpProjection &&
		out[n-1].Kind == KindAttributeList {
		piPair := append([]Token{}, out[n-2:n]...)
		out = append(out[:n-2], op)
		pending = append(pending, piPair, piPair)
		return out, pending
	}
	return append(out, op), pending
}

// applyThetaJoin splits a covering projection across a theta-join's two
// operands, partitioning its attribute list by each operand's schema. When
// the join condition only touches attributes already in the list, the outer
// projection is dropped entirely; otherwise each side's new projection is
// augmented with the join-referenced attributes and the outer projection
// stays. rest is the remainder of the input after the condition token, used
// only to peek ahead for the operand table names.
func (r *Rewriter) applyThetaJoin(out Expression, op, cond Token, rest Expression, pending [][]Token) (Expression, [][]Token) {
	n := len(out)
	if n < 2 || out[n-2].Kind != KindOperator || out[n-2].Op != OpProjection || out[n-1].Kind != KindAttributeList {
		return append(out, op, cond), pending
	}

	// A projection already sitting directly on the join's first operand
	// means the split has been applied before (or the caller wrote the
	// per-side projections by hand); redoing it would stack a second
	// projection pair onto each operand.
	if len(rest) > 0 && rest[0].Kind == KindOperator && rest[0].Op == OpProjection {
		return append(out, op, cond), pending
	}

	left, right, ok := peekOperands(rest)
	if !ok || r.schema == nil {
		return append(out, op, cond), pending
	}
	schemaL, errL := r.schema.SchemaAttrs(left)
	schemaR, errR := r.schema.SchemaAttrs(right)
	if errL != nil || errR != nil {
		return append(out, op, cond), pending
	}

	l := r.cfg.Tokenize(out[n-1].Payload)
	condAttrs := r.cfg.ConditionAttrs(cond.Payload)
	lR := FilterToSchema(l, schemaL)
	lS := FilterToSchema(l, schemaR)

	if IsSubset(condAttrs, l) {
		// Join only touches attributes already in L; drop the outer
		// projection and push L_R/L_S directly in front of R and S.
		out = out[:n-2]
		out = append(out, op, cond)
		pending = append(pending,
			[]Token{Operator(OpProjection), r.cfg.AttributeList(lR)},
			[]Token{Operator(OpProjection), r.cfg.AttributeList(lS)},
		)
		return out, pending
	}

	// The join references attributes outside L; augment each side's
	// projection with those and keep the outer projection in place.
	lR = Dedup(append(lR, FilterToSchema(condAttrs, schemaL)...))
	lS = Dedup(append(lS, FilterToSchema(condAttrs, schemaR)...))
	out = append(out, op, cond)
	pending = append(pending,
		[]Token{Operator(OpProjection), r.cfg.AttributeList(lR)},
		[]Token{Operator(OpProjection), r.cfg.AttributeList(lS)},
	)
	return out, pending
}

// peekOperands scans forward for the first two Operand tokens in toks,
// returning their table names. Only joins whose operands are flat table
// references split correctly; nested subexpression operands are not
// supported by the single-pass traversal.
func peekOperands(toks Expression) (left, right string, ok bool) {
	found := make([]string, 0, 2)
	for _, t := range toks {
		if t.Kind == KindOperand {
			found = append(found, t.Payload)
			if len(found) == 2 {
				return found[0], found[1], true
			}
		}
	}
	return "", "", false
}
