// Package raopt rewrites a linearized relational-algebra expression by
// applying projection equivalences: cascade elimination of redundant
// projections, pushdown of selection below a covering projection,
// distribution of projection over union/intersect, and splitting of
// projection across a theta-join.
//
// The rewrite is a single forward pass over the input token list (Rewriter)
// consulting the suffix it has already emitted; the one lookahead is the
// theta-join rule, which peeks at the upcoming input for its two operand
// table names. It never fails: malformed input is logged and passed through
// unchanged, so callers always get back a valid (possibly unoptimized)
// expression.
package raopt
