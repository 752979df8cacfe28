// Package calc evaluates extracted formulas.
//
// Formulas run one at a time, in extraction order, against an [Env] that
// belongs to a single request. Each result is stored in the environment
// under the formula's name before the next formula runs, so later formulas
// see earlier results. Evaluation stops at the first formula that fails;
// the returned error is a [*Failure] that names it.
//
// [Project] reduces the results to an [Output], an ordered mapping in which
// the first occurrence of each name wins. Every occurrence still updates the
// environment, so a repeated name affects the formulas after it even though
// its reported value does not change.
//
// Two expression engines are available. The default, "expr", uses
// github.com/expr-lang/expr; "starlark" evaluates each formula as a single
// Starlark expression. A [Calculator] ties document parsing, extraction,
// evaluation and projection together and is safe for concurrent use.
package calc
