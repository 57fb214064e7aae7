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
	"math/big"
)

// This file holds the term-level constructors underpinning the smart
// constructors of expr.go.  Each one folds literal operands unconditionally
// and applies the Boolean identity laws, so that a constructor applied to
// constant terms always yields a constant term.

func notTerm(arg Term) Term {
	if b, ok := arg.(*BoolTerm); ok {
		return &BoolTerm{!b.Value}
	}
	//
	return &UnaryTerm{NOT, arg}
}

func negTerm(arg Term) Term {
	switch t := arg.(type) {
	case *IntTerm:
		return &IntTerm{new(big.Int).Neg(t.Value)}
	case *RealTerm:
		return &RealTerm{new(big.Rat).Neg(t.Value)}
	default:
		return &UnaryTerm{NEG, arg}
	}
}

func castTerm(op UnaryOp, arg Term) Term {
	switch t := arg.(type) {
	case *IntTerm:
		if op == TO_REAL {
			return &RealTerm{new(big.Rat).SetInt(t.Value)}
		}
	case *RealTerm:
		if op == TO_INT {
			// Truncation towards zero.
			return &IntTerm{new(big.Int).Quo(t.Value.Num(), t.Value.Denom())}
		}
	}
	//
	return &UnaryTerm{op, arg}
}

func connectiveTerm(op BinaryOp, lhs Term, rhs Term) Term {
	l, lok := lhs.(*BoolTerm)
	r, rok := rhs.(*BoolTerm)
	// Fold two literals.
	if lok && rok {
		switch op {
		case AND:
			return &BoolTerm{l.Value && r.Value}
		case OR:
			return &BoolTerm{l.Value || r.Value}
		case XOR:
			return &BoolTerm{l.Value != r.Value}
		case IMPLIES:
			return &BoolTerm{!l.Value || r.Value}
		}
	}
	// Identity laws on a literal left operand.
	if lok {
		switch op {
		case AND:
			if l.Value {
				return rhs
			}
			//
			return &BoolTerm{false}
		case OR:
			if l.Value {
				return &BoolTerm{true}
			}
			//
			return rhs
		case XOR:
			if l.Value {
				return notTerm(rhs)
			}
			//
			return rhs
		case IMPLIES:
			if l.Value {
				return rhs
			}
			//
			return &BoolTerm{true}
		}
	}
	// Identity laws on a literal right operand.
	if rok {
		switch op {
		case AND:
			if r.Value {
				return lhs
			}
			//
			return &BoolTerm{false}
		case OR:
			if r.Value {
				return &BoolTerm{true}
			}
			//
			return lhs
		case XOR:
			if r.Value {
				return notTerm(lhs)
			}
			//
			return lhs
		case IMPLIES:
			if r.Value {
				return &BoolTerm{true}
			}
			//
			return notTerm(lhs)
		}
	}
	//
	return &BinaryTerm{op, lhs, rhs}
}

func arithmeticTerm(op BinaryOp, lhs Term, rhs Term) Term {
	if l, ok := lhs.(*IntTerm); ok {
		if r, ok := rhs.(*IntTerm); ok {
			if folded := foldIntArithmetic(op, l.Value, r.Value); folded != nil {
				return folded
			}
		}
	}
	//
	if l, ok := lhs.(*RealTerm); ok {
		if r, ok := rhs.(*RealTerm); ok {
			if folded := foldRealArithmetic(op, l.Value, r.Value); folded != nil {
				return folded
			}
		}
	}
	//
	return &BinaryTerm{op, lhs, rhs}
}

func foldIntArithmetic(op BinaryOp, lhs *big.Int, rhs *big.Int) Term {
	switch op {
	case ADD:
		return &IntTerm{new(big.Int).Add(lhs, rhs)}
	case SUB:
		return &IntTerm{new(big.Int).Sub(lhs, rhs)}
	case MUL:
		return &IntTerm{new(big.Int).Mul(lhs, rhs)}
	case DIV:
		if rhs.Sign() != 0 {
			q, _ := euclidean(lhs, rhs)
			return &IntTerm{q}
		}
	case MOD:
		if rhs.Sign() != 0 {
			_, r := euclidean(lhs, rhs)
			return &IntTerm{r}
		}
	}
	// Division by zero is left symbolic for the back-end to refute.
	return nil
}

func foldRealArithmetic(op BinaryOp, lhs *big.Rat, rhs *big.Rat) Term {
	switch op {
	case ADD:
		return &RealTerm{new(big.Rat).Add(lhs, rhs)}
	case SUB:
		return &RealTerm{new(big.Rat).Sub(lhs, rhs)}
	case MUL:
		return &RealTerm{new(big.Rat).Mul(lhs, rhs)}
	case DIV:
		if rhs.Sign() != 0 {
			return &RealTerm{new(big.Rat).Quo(lhs, rhs)}
		}
	}
	//
	return nil
}

// euclidean computes quotient and remainder with the remainder always
// non-negative, matching the integer division of the downstream solver.
func euclidean(lhs *big.Int, rhs *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(lhs, rhs, new(big.Int))
	//
	if r.Sign() < 0 {
		if rhs.Sign() > 0 {
			q.Sub(q, big.NewInt(1))
			r.Add(r, rhs)
		} else {
			q.Add(q, big.NewInt(1))
			r.Sub(r, rhs)
		}
	}
	//
	return q, r
}

func relationTerm(op BinaryOp, lhs Term, rhs Term) Term {
	if folded := foldRelation(op, lhs, rhs); folded != nil {
		return folded
	}
	//
	return &BinaryTerm{op, lhs, rhs}
}

func foldRelation(op BinaryOp, lhs Term, rhs Term) Term {
	switch l := lhs.(type) {
	case *IntTerm:
		if r, ok := rhs.(*IntTerm); ok {
			return orderingTerm(op, l.Value.Cmp(r.Value))
		}
	case *RealTerm:
		if r, ok := rhs.(*RealTerm); ok {
			return orderingTerm(op, l.Value.Cmp(r.Value))
		}
	case *BoolTerm:
		if r, ok := rhs.(*BoolTerm); ok {
			switch op {
			case EQ:
				return &BoolTerm{l.Value == r.Value}
			case NEQ:
				return &BoolTerm{l.Value != r.Value}
			}
		}
	case *EnumTerm:
		// Distinct constructors of one enumeration are distinct values.
		if r, ok := rhs.(*EnumTerm); ok {
			switch op {
			case EQ:
				return &BoolTerm{l.Id.Equals(r.Id)}
			case NEQ:
				return &BoolTerm{!l.Id.Equals(r.Id)}
			}
		}
	}
	//
	return nil
}

func orderingTerm(op BinaryOp, cmp int) Term {
	switch op {
	case EQ:
		return &BoolTerm{cmp == 0}
	case NEQ:
		return &BoolTerm{cmp != 0}
	case LT:
		return &BoolTerm{cmp < 0}
	case LTEQ:
		return &BoolTerm{cmp <= 0}
	case GT:
		return &BoolTerm{cmp > 0}
	case GTEQ:
		return &BoolTerm{cmp >= 0}
	default:
		panic("unknown relational operator")
	}
}

func iteTerm(cond Term, then Term, orelse Term) Term {
	if c, ok := cond.(*BoolTerm); ok {
		if c.Value {
			return then
		}
		//
		return orelse
	}
	//
	return &IteTerm{cond, then, orelse}
}
