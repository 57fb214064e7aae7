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
	"maps"

	"github.com/consensys/go-lustre/pkg/util/source"
)

// TypeLeaf pairs the remaining index path of a scalar leaf with its scalar
// type.
type TypeLeaf = Indexed[Type]

// Context is the typing context the elaboration pipeline is keyed by.  It
// grows monotonically as top-level declarations are processed; a binding is
// never removed, and only RetypeValue rewrites one.  Per-node bindings are made on a clone (see
// Clone), so that signals of one node are invisible to the next.
//
// All tables are keyed by the interned canonical form of identifiers.
type Context struct {
	// Scalar type of every fully-qualified leaf identifier arising from a
	// type declaration.
	basicTypes map[string]Type
	// Materialized trie over type-declaration leaves: maps every proper
	// prefix of a leaf to its remaining suffixes and their scalar types,
	// allowing whole-aggregate dereference.
	indexedTypes map[string][]TypeLeaf
	// Declared free (abstract) type names.
	freeTypes map[string]bool
	// Scalar type of every in-scope scalar signal or enumeration constant.
	typeCtx map[string]Type
	// Projection of typeCtx onto the prefix structure: maps every proper
	// prefix of an in-scope leaf to the remaining suffixes in scope.
	indexCtx map[string][][]Index
	// Flat expression of every in-scope constant.
	consts map[string]Expr
	// Elaborated nodes, keyed by name.
	nodes map[string]*Node
	// Node names in elaboration order.
	nodeOrder []string
}

// NewContext constructs an empty typing context.
func NewContext() *Context {
	return &Context{
		basicTypes:   make(map[string]Type),
		indexedTypes: make(map[string][]TypeLeaf),
		freeTypes:    make(map[string]bool),
		typeCtx:      make(map[string]Type),
		indexCtx:     make(map[string][][]Index),
		consts:       make(map[string]Expr),
		nodes:        make(map[string]*Node),
	}
}

// Clone produces a context sharing no table state with the original.  Node
// elaboration works on a clone, so node-local signals never leak into the
// top-level context.
func (p *Context) Clone() *Context {
	return &Context{
		basicTypes:   maps.Clone(p.basicTypes),
		indexedTypes: maps.Clone(p.indexedTypes),
		freeTypes:    maps.Clone(p.freeTypes),
		typeCtx:      maps.Clone(p.typeCtx),
		indexCtx:     maps.Clone(p.indexCtx),
		consts:       maps.Clone(p.consts),
		nodes:        maps.Clone(p.nodes),
		nodeOrder:    p.nodeOrder,
	}
}

// ============================================================================
// Types
// ============================================================================

// TypeInContext checks whether a given name is a known type alias or free
// type.
func (p *Context) TypeInContext(name string) bool {
	if p.freeTypes[name] {
		return true
	} else if _, ok := p.basicTypes[name]; ok {
		return true
	}
	//
	_, ok := p.indexedTypes[name]
	//
	return ok
}

// BindTypeLeaf registers one scalar leaf of a type declaration, updating both
// the leaf table and the prefix trie.
func (p *Context) BindTypeLeaf(leaf Ident, datatype Type) {
	p.basicTypes[leaf.String()] = datatype
	//
	addToPrefixMap(p.indexedTypes, leaf, datatype)
}

// BindFreeType registers a free (abstract) type.
func (p *Context) BindFreeType(name string) {
	p.freeTypes[name] = true
}

// IsFreeType checks whether a given name denotes a free type.
func (p *Context) IsFreeType(name string) bool {
	return p.freeTypes[name]
}

// ScalarAlias looks up a name declared as an alias for a scalar type.
func (p *Context) ScalarAlias(name string) (Type, bool) {
	t, ok := p.basicTypes[name]
	return t, ok
}

// TypeLeaves returns the suffix leaves of a name declared as an alias for an
// aggregate type.
func (p *Context) TypeLeaves(name string) ([]TypeLeaf, bool) {
	leaves, ok := p.indexedTypes[name]
	return leaves, ok
}

// ============================================================================
// Values
// ============================================================================

// IdentInContext checks whether an identifier is bound as a scalar, or has
// scalar descendants in scope.
func (p *Context) IdentInContext(id Ident) bool {
	key := id.String()
	//
	if _, ok := p.typeCtx[key]; ok {
		return true
	}
	//
	_, ok := p.indexCtx[key]
	//
	return ok
}

// BindValue registers a scalar signal (or enumeration constant) in the value
// tables.  Registering the same leaf twice is a redeclaration, reported by
// the caller.
func (p *Context) BindValue(leaf Ident, datatype Type) {
	p.typeCtx[leaf.String()] = datatype
	//
	addToPrefixMapPaths(p.indexCtx, leaf)
}

// LookupValue determines the scalar type of an in-scope leaf identifier.
func (p *Context) LookupValue(id Ident) (Type, bool) {
	t, ok := p.typeCtx[id.String()]
	return t, ok
}

// Suffixes returns the index suffixes in scope under a given identifier
// prefix.
func (p *Context) Suffixes(id Ident) ([][]Index, bool) {
	suffixes, ok := p.indexCtx[id.String()]
	return suffixes, ok
}

// RetypeValue widens the recorded type of an in-scope leaf.  This is the one
// place the context rewrites a binding: the Int-into-subrange relaxation of
// equation checking.
func (p *Context) RetypeValue(leaf Ident, datatype Type) {
	p.typeCtx[leaf.String()] = datatype
}

// ============================================================================
// Constants
// ============================================================================

// BindConst registers a constant with its flat expression.
func (p *Context) BindConst(leaf Ident, value Expr) {
	p.consts[leaf.String()] = value
}

// LookupConst determines the flat expression of an in-scope constant.
func (p *Context) LookupConst(id Ident) (Expr, bool) {
	e, ok := p.consts[id.String()]
	return e, ok
}

// AddEnumToContext binds each constructor of an enumeration type to the
// enumeration itself in the value table.  Re-binding a constructor to a
// different type is fatal; other types pass through untouched.
func (p *Context) AddEnumToContext(datatype Type, span source.Span) []SyntaxError {
	enum, ok := datatype.(*EnumType)
	//
	if !ok {
		return nil
	}
	//
	for _, c := range enum.Cases {
		if existing, ok := p.typeCtx[c.String()]; ok {
			if !existing.Equals(enum) {
				return errorAt(Redeclaration, span,
					"enum constant %s already declared with type %s", c, existing)
			}
			// Same enumeration seen again, e.g. via two aliases.
			continue
		}
		//
		p.BindValue(c, enum)
		p.BindConst(c, EnumConstant(c, enum))
	}
	//
	return nil
}

// ============================================================================
// Nodes
// ============================================================================

// BindNode registers an elaborated node.
func (p *Context) BindNode(node *Node) {
	p.nodes[node.Name] = node
	p.nodeOrder = append(p.nodeOrder, node.Name)
}

// LookupNode finds a previously elaborated node by name.
func (p *Context) LookupNode(name string) (*Node, bool) {
	n, ok := p.nodes[name]
	return n, ok
}

// Nodes returns the elaborated nodes in elaboration order.
func (p *Context) Nodes() []*Node {
	nodes := make([]*Node, len(p.nodeOrder))
	for i, n := range p.nodeOrder {
		nodes[i] = p.nodes[n]
	}
	//
	return nodes
}

// ============================================================================
// Prefix maps
// ============================================================================

// addToPrefixMap registers every proper prefix of a fully-qualified leaf as a
// key mapping to the suffixes-with-values below it.  The full path itself is
// not registered.
func addToPrefixMap(prefixes map[string][]TypeLeaf, leaf Ident, datatype Type) {
	base, path := leaf.Split()
	prefix := NewIdent(base)
	//
	for i := 0; i < len(path); i++ {
		key := prefix.String()
		prefixes[key] = append(prefixes[key], TypeLeaf{path[i:], datatype})
		//
		prefix = prefix.Push(path[i])
	}
}

// addToPrefixMapPaths is the index-only analogue of addToPrefixMap, used for
// the in-scope suffix table.
func addToPrefixMapPaths(prefixes map[string][][]Index, leaf Ident) {
	base, path := leaf.Split()
	prefix := NewIdent(base)
	//
	for i := 0; i < len(path); i++ {
		key := prefix.String()
		prefixes[key] = append(prefixes[key], path[i:])
		//
		prefix = prefix.Push(path[i])
	}
}
