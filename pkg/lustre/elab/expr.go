// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package elab

import (
	"fmt"
	"math/big"

	"github.com/consensys/go-lustre/pkg/util/collection/set"
)

// Expr is a flat (scalar-typed) expression in two-instant normal form: one
// term giving its value on the initial instant, and one term giving its value
// on every subsequent instant.  The pair is maintained such that the whole
// expression always reads as "init -> step".  Alongside, the set of state
// variables the expression reads via a pre (transitively) is tracked for the
// dependency analysis.
//
// Expressions are built exclusively through the smart constructors below,
// which enforce the operator typing rules and fold constants unconditionally.
type Expr struct {
	// Type of this expression (always scalar).
	Type Type
	// Value on the initial instant.
	Init Term
	// Value on all subsequent instants.
	Step Term
	// Canonical identifiers of the variables read under a pre.
	PreVars *set.SortedSet[string]
}

// IsVar checks whether this expression is a plain variable reference,
// returning the variable identifier if so.
func (p Expr) IsVar() (Ident, bool) {
	if v, ok := p.Init.(*VarTerm); ok {
		if w, ok := p.Step.(*VarTerm); ok && v.Id.Equals(w.Id) {
			return v.Id, true
		}
	}
	//
	return Ident{}, false
}

// AsIntConstant checks whether this expression is a compile-time integer
// constant: identical integer literals on both instants, no pre dependencies.
func (p Expr) AsIntConstant() (*big.Int, bool) {
	if i, ok := p.Init.(*IntTerm); ok && len(*p.PreVars) == 0 {
		if s, ok := p.Step.(*IntTerm); ok && i.Value.Cmp(s.Value) == 0 {
			return i.Value, true
		}
	}
	//
	return nil, false
}

// CurrentVars determines the variables this expression reads at the current
// instant on its step term, i.e. excluding those only read under a pre.
func (p Expr) CurrentVars() map[string]Ident {
	accum := make(map[string]Ident)
	CurrentVariables(p.Step, accum)
	//
	return accum
}

// String produces a human-readable rendering of this expression.  An
// expression whose instants coincide prints as a single term.
func (p Expr) String() string {
	init, step := p.Init.String(), p.Step.String()
	//
	if init == step {
		return step
	}
	//
	return fmt.Sprintf("(%s -> %s)", init, step)
}

// ============================================================================
// Atoms
// ============================================================================

// Variable constructs a reference to a scalar signal on the base clock.
func Variable(id Ident, datatype Type) Expr {
	term := &VarTerm{id, datatype}
	return Expr{datatype, term, term, set.NewSortedSet[string]()}
}

// EnumConstant constructs a reference to an enumeration constructor.
func EnumConstant(id Ident, datatype *EnumType) Expr {
	term := &EnumTerm{id, datatype}
	return Expr{datatype, term, term, set.NewSortedSet[string]()}
}

// BoolConstant constructs a Boolean literal.
func BoolConstant(value bool) Expr {
	term := &BoolTerm{value}
	return Expr{TheBoolType, term, term, set.NewSortedSet[string]()}
}

// IntConstant constructs an integer literal.
func IntConstant(value *big.Int) Expr {
	term := &IntTerm{value}
	return Expr{TheIntType, term, term, set.NewSortedSet[string]()}
}

// RealConstant constructs a real literal.
func RealConstant(value *big.Rat) Expr {
	term := &RealTerm{value}
	return Expr{TheRealType, term, term, set.NewSortedSet[string]()}
}

// ============================================================================
// Temporal operators
// ============================================================================

// Pre constructs the previous-instant read of a variable.  Only a plain
// variable reference is accepted; the evaluator is responsible for abstracting
// any compound argument into a fresh auxiliary variable beforehand.  The
// initial instant of the result is undefined until guarded by an arrow.
func Pre(arg Expr) (Expr, error) {
	id, ok := arg.IsVar()
	//
	if !ok {
		return Expr{}, fmt.Errorf("pre applied to non-variable expression %s", arg)
	}
	//
	prevars := arg.PreVars.Clone()
	prevars.Insert(id.String())
	//
	return Expr{arg.Type, &UndefTerm{arg.Type}, &PreTerm{id, arg.Type}, prevars}, nil
}

// Arrow combines an initial alternative with a subsequent-instants
// alternative: the result takes the first operand on the initial instant and
// the second on every other.  Since expressions are kept in init/step pairs,
// nested arrows distribute away here by construction.
func Arrow(lhs Expr, rhs Expr) (Expr, error) {
	datatype, err := joinTypes(lhs.Type, rhs.Type)
	//
	if err != nil {
		return Expr{}, fmt.Errorf("arrow branches disagree: %s vs %s", lhs.Type, rhs.Type)
	}
	//
	return Expr{datatype, lhs.Init, rhs.Step, unionPreVars(lhs, rhs)}, nil
}

// ============================================================================
// Boolean connectives
// ============================================================================

// Not constructs a Boolean negation.
func Not(arg Expr) (Expr, error) {
	if err := requireBool("not", arg); err != nil {
		return Expr{}, err
	}
	//
	return Expr{TheBoolType, notTerm(arg.Init), notTerm(arg.Step), arg.PreVars}, nil
}

// And constructs a Boolean conjunction.
func And(lhs Expr, rhs Expr) (Expr, error) {
	return connective(AND, lhs, rhs)
}

// Or constructs a Boolean disjunction.
func Or(lhs Expr, rhs Expr) (Expr, error) {
	return connective(OR, lhs, rhs)
}

// Xor constructs a Boolean exclusive disjunction.
func Xor(lhs Expr, rhs Expr) (Expr, error) {
	return connective(XOR, lhs, rhs)
}

// Implies constructs a Boolean implication.
func Implies(lhs Expr, rhs Expr) (Expr, error) {
	return connective(IMPLIES, lhs, rhs)
}

func connective(op BinaryOp, lhs Expr, rhs Expr) (Expr, error) {
	if err := requireBool(op.String(), lhs); err != nil {
		return Expr{}, err
	} else if err := requireBool(op.String(), rhs); err != nil {
		return Expr{}, err
	}
	//
	init := connectiveTerm(op, lhs.Init, rhs.Init)
	step := connectiveTerm(op, lhs.Step, rhs.Step)
	//
	return Expr{TheBoolType, init, step, unionPreVars(lhs, rhs)}, nil
}

// ============================================================================
// Arithmetic
// ============================================================================

// Neg constructs an arithmetic negation.
func Neg(arg Expr) (Expr, error) {
	datatype, err := widenNumeric(arg.Type)
	//
	if err != nil {
		return Expr{}, fmt.Errorf("operator - expects a numeric operand, got %s", arg.Type)
	}
	//
	return Expr{datatype, negTerm(arg.Init), negTerm(arg.Step), arg.PreVars}, nil
}

// Add constructs an arithmetic sum.
func Add(lhs Expr, rhs Expr) (Expr, error) { return arithmetic(ADD, lhs, rhs) }

// Sub constructs an arithmetic difference.
func Sub(lhs Expr, rhs Expr) (Expr, error) { return arithmetic(SUB, lhs, rhs) }

// Mul constructs an arithmetic product.
func Mul(lhs Expr, rhs Expr) (Expr, error) { return arithmetic(MUL, lhs, rhs) }

// Div constructs a division.  On integers this is Euclidean division (the
// remainder is always non-negative); on reals it is exact division.
func Div(lhs Expr, rhs Expr) (Expr, error) { return arithmetic(DIV, lhs, rhs) }

// Mod constructs a Euclidean remainder; both operands must be integers.
func Mod(lhs Expr, rhs Expr) (Expr, error) {
	if !isIntLike(lhs.Type) || !isIntLike(rhs.Type) {
		return Expr{}, fmt.Errorf("operator mod expects integer operands, got %s and %s", lhs.Type, rhs.Type)
	}
	//
	return arithmetic(MOD, lhs, rhs)
}

func arithmetic(op BinaryOp, lhs Expr, rhs Expr) (Expr, error) {
	datatype, err := joinNumeric(lhs.Type, rhs.Type)
	//
	if err != nil {
		return Expr{}, fmt.Errorf("operator %s expects numeric operands of one kind, got %s and %s",
			op, lhs.Type, rhs.Type)
	}
	//
	init := arithmeticTerm(op, lhs.Init, rhs.Init)
	step := arithmeticTerm(op, lhs.Step, rhs.Step)
	//
	return Expr{datatype, init, step, unionPreVars(lhs, rhs)}, nil
}

// ============================================================================
// Relations
// ============================================================================

// Equals constructs an equality between two scalars of compatible type.
func Equals(lhs Expr, rhs Expr) (Expr, error) { return relation(EQ, lhs, rhs) }

// NotEquals constructs a disequality between two scalars of compatible type.
func NotEquals(lhs Expr, rhs Expr) (Expr, error) { return relation(NEQ, lhs, rhs) }

// LessThan constructs a numeric strict ordering.
func LessThan(lhs Expr, rhs Expr) (Expr, error) { return relation(LT, lhs, rhs) }

// LessThanEquals constructs a numeric ordering.
func LessThanEquals(lhs Expr, rhs Expr) (Expr, error) { return relation(LTEQ, lhs, rhs) }

// GreaterThan constructs a numeric strict ordering.
func GreaterThan(lhs Expr, rhs Expr) (Expr, error) { return relation(GT, lhs, rhs) }

// GreaterThanEquals constructs a numeric ordering.
func GreaterThanEquals(lhs Expr, rhs Expr) (Expr, error) { return relation(GTEQ, lhs, rhs) }

func relation(op BinaryOp, lhs Expr, rhs Expr) (Expr, error) {
	if op == EQ || op == NEQ {
		// Any compatible scalars may be compared for equality.
		if _, err := joinTypes(lhs.Type, rhs.Type); err != nil {
			return Expr{}, fmt.Errorf("operator %s expects operands of one type, got %s and %s",
				op, lhs.Type, rhs.Type)
		}
	} else if _, err := joinNumeric(lhs.Type, rhs.Type); err != nil {
		return Expr{}, fmt.Errorf("operator %s expects numeric operands of one kind, got %s and %s",
			op, lhs.Type, rhs.Type)
	}
	//
	init := relationTerm(op, lhs.Init, rhs.Init)
	step := relationTerm(op, lhs.Step, rhs.Step)
	//
	return Expr{TheBoolType, init, step, unionPreVars(lhs, rhs)}, nil
}

// ============================================================================
// Conditional
// ============================================================================

// Ite constructs a conditional over a scalar Boolean guard.
func Ite(cond Expr, then Expr, orelse Expr) (Expr, error) {
	if err := requireBool("if", cond); err != nil {
		return Expr{}, err
	}
	//
	datatype, err := joinTypes(then.Type, orelse.Type)
	//
	if err != nil {
		return Expr{}, fmt.Errorf("conditional branches disagree: %s vs %s", then.Type, orelse.Type)
	}
	//
	init := iteTerm(cond.Init, then.Init, orelse.Init)
	step := iteTerm(cond.Step, then.Step, orelse.Step)
	prevars := unionPreVars(cond, then)
	prevars.InsertSorted(orelse.PreVars)
	//
	return Expr{datatype, init, step, prevars}, nil
}

// ============================================================================
// Conversions
// ============================================================================

// ToInt constructs a real-to-integer conversion (truncation towards zero).
// Applying it to an integer is the identity.
func ToInt(arg Expr) (Expr, error) {
	if isIntLike(arg.Type) {
		return arg, nil
	} else if !arg.Type.Equals(TheRealType) {
		return Expr{}, fmt.Errorf("operator int expects a numeric operand, got %s", arg.Type)
	}
	//
	return Expr{TheIntType, castTerm(TO_INT, arg.Init), castTerm(TO_INT, arg.Step), arg.PreVars}, nil
}

// ToReal constructs an integer-to-real conversion.  Applying it to a real is
// the identity.
func ToReal(arg Expr) (Expr, error) {
	if arg.Type.Equals(TheRealType) {
		return arg, nil
	} else if !isIntLike(arg.Type) {
		return Expr{}, fmt.Errorf("operator real expects a numeric operand, got %s", arg.Type)
	}
	//
	return Expr{TheRealType, castTerm(TO_REAL, arg.Init), castTerm(TO_REAL, arg.Step), arg.PreVars}, nil
}

// ============================================================================
// Typing helpers
// ============================================================================

func isIntLike(t Type) bool {
	switch t.(type) {
	case *IntType, *IntRangeType:
		return true
	default:
		return false
	}
}

// widenNumeric maps a subrange to Int and leaves Int and Real alone; anything
// else is an error.
func widenNumeric(t Type) (Type, error) {
	if isIntLike(t) {
		return TheIntType, nil
	} else if t.Equals(TheRealType) {
		return TheRealType, nil
	}
	//
	return nil, fmt.Errorf("expected numeric type, got %s", t)
}

// joinNumeric determines the result type of an arithmetic operator: both
// operands integer-like (widened to Int) or both Real.
func joinNumeric(l Type, r Type) (Type, error) {
	if isIntLike(l) && isIntLike(r) {
		return TheIntType, nil
	} else if l.Equals(TheRealType) && r.Equals(TheRealType) {
		return TheRealType, nil
	}
	//
	return nil, fmt.Errorf("incompatible numeric types %s and %s", l, r)
}

// joinTypes determines the common type of two expressions flowing into the
// same position (arrow and conditional branches, equality operands).
func joinTypes(l Type, r Type) (Type, error) {
	if l.Equals(r) {
		return l, nil
	} else if isIntLike(l) && isIntLike(r) {
		return TheIntType, nil
	}
	//
	return nil, fmt.Errorf("incompatible types %s and %s", l, r)
}

func requireBool(op string, arg Expr) error {
	if !arg.Type.Equals(TheBoolType) {
		return fmt.Errorf("operator %s expects a bool operand, got %s", op, arg.Type)
	}
	//
	return nil
}

func unionPreVars(lhs Expr, rhs Expr) *set.SortedSet[string] {
	prevars := lhs.PreVars.Clone()
	prevars.InsertSorted(rhs.PreVars)
	//
	return prevars
}
