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
	"slices"
	"sort"

	"github.com/consensys/go-lustre/pkg/util/collection/set"
	"github.com/consensys/go-lustre/pkg/util/source"
)

// analyze builds the instantaneous dependency graph over the node's defined
// leaves, rejects cycles, reorders the equations topologically, and computes
// the per-output input-dependency vectors.
//
// A defined leaf is the left-hand side of an equation or a bound call output.
// Its dependencies are the variables read at the current instant: for an
// equation, those of its step term outside any pre; for a call output, those
// of the input expressions the callee's own dependency vector identifies,
// plus the activation condition.
func (p *assembler) analyze(span source.Span) []SyntaxError {
	deps := make(map[string]*set.SortedSet[string])
	//
	for _, eq := range p.node.Equations {
		deps[eq.Lhs.String()] = currentVarSet(eq.Rhs)
	}
	//
	for _, call := range p.node.Calls {
		callee, _ := p.ctx.LookupNode(call.Callee)
		//
		for j, out := range call.Outputs {
			outDeps := currentVarSet(call.Activation)
			//
			for _, pos := range callee.OutputInputDep[j] {
				outDeps.InsertSorted(currentVarSet(call.Inputs[pos]))
			}
			//
			deps[out.String()] = outDeps
		}
	}
	// Order the defined leaves such that dependencies come first, rejecting
	// cycles.
	order, errs := topologicalOrder(deps, span)
	//
	if len(errs) > 0 {
		return errs
	}
	// Sort equations by the position of their left-hand side.
	position := make(map[string]int, len(order))
	for i, key := range order {
		position[key] = i
	}
	//
	slices.SortStableFunc(p.node.Equations, func(l Equation, r Equation) int {
		return position[l.Lhs.String()] - position[r.Lhs.String()]
	})
	//
	p.computeOutputDeps(deps)
	//
	return nil
}

// currentVarSet collects the current-instant variables of an expression's
// step term as a sorted set.
func currentVarSet(e Expr) *set.SortedSet[string] {
	vars := e.CurrentVars()
	result := set.NewSortedSet[string]()
	//
	for key := range vars {
		result.Insert(key)
	}
	//
	return result
}

// topologicalOrder sorts the defined leaves such that every dependency
// precedes its dependants, with ties broken by identifier comparison.  A
// dependency which is not itself a defined leaf (an input, or a constant) is
// a source and imposes no ordering.  Any cycle is fatal.
func topologicalOrder(deps map[string]*set.SortedSet[string], span source.Span) ([]string, []SyntaxError) {
	// Count unresolved dependencies per defined leaf.
	pending := make(map[string]int, len(deps))
	// Reverse edges: dependency -> dependants.
	dependants := make(map[string][]string, len(deps))
	//
	for key, kdeps := range deps {
		n := 0
		//
		for _, d := range *kdeps {
			if _, ok := deps[d]; ok {
				n++
				dependants[d] = append(dependants[d], key)
			}
		}
		//
		pending[key] = n
	}
	// Seed the ready set with leaves having no unresolved dependencies.
	var ready []string
	//
	for key, n := range pending {
		if n == 0 {
			ready = append(ready, key)
		}
	}
	//
	sort.Strings(ready)
	//
	var order []string
	//
	for len(ready) > 0 {
		// Emit the least ready leaf, for a stable tie-break.
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		//
		var released []string
		//
		for _, dependant := range dependants[next] {
			pending[dependant]--
			//
			if pending[dependant] == 0 {
				released = append(released, dependant)
			}
		}
		//
		if len(released) > 0 {
			sort.Strings(released)
			ready = mergeSortedStrings(ready, released)
		}
	}
	// Any leaf not emitted sits on a cycle.
	if len(order) < len(deps) {
		var cyclic []string
		//
		for key, n := range pending {
			if n > 0 {
				cyclic = append(cyclic, key)
			}
		}
		//
		sort.Strings(cyclic)
		//
		return nil, errorAt(CyclicDependency, span, "cyclic dependency involving %s", cyclic[0])
	}
	//
	return order, nil
}

func mergeSortedStrings(left []string, right []string) []string {
	merged := make([]string, 0, len(left)+len(right))
	i, j := 0, 0
	//
	for i < len(left) && j < len(right) {
		if left[i] <= right[j] {
			merged = append(merged, left[i])
			i++
		} else {
			merged = append(merged, right[j])
			j++
		}
	}
	//
	merged = append(merged, left[i:]...)
	//
	return append(merged, right[j:]...)
}

// computeOutputDeps determines, for each output leaf, the input leaf
// positions reachable through the transitive dependency relation.
func (p *assembler) computeOutputDeps(deps map[string]*set.SortedSet[string]) {
	inputs := make(map[string]uint)
	//
	for i, id := range p.node.InputLeaves() {
		inputs[id.String()] = uint(i)
	}
	// Memoized reachable-inputs computation over the acyclic graph.
	memo := make(map[string]*set.SortedSet[string])
	//
	var reach func(key string) *set.SortedSet[string]
	//
	reach = func(key string) *set.SortedSet[string] {
		if cached, ok := memo[key]; ok {
			return cached
		}
		//
		result := set.NewSortedSet[string]()
		memo[key] = result
		//
		kdeps, ok := deps[key]
		//
		if !ok {
			// An input or constant source.
			if _, isInput := inputs[key]; isInput {
				result.Insert(key)
			}
			//
			return result
		}
		//
		for _, d := range *kdeps {
			result.InsertSorted(reach(d))
		}
		//
		return result
	}
	//
	outputs := p.node.OutputLeaves()
	vectors := make([][]uint, len(outputs))
	//
	for i, out := range outputs {
		reached := reach(out.String())
		//
		var positions []uint
		//
		for _, key := range *reached {
			positions = append(positions, inputs[key])
		}
		//
		slices.Sort(positions)
		vectors[i] = positions
	}
	//
	p.node.OutputInputDep = vectors
}
