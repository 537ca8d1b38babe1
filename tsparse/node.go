// Copyright 2020 ZUP IT SERVICOS EM TECNOLOGIA E INOVACAO SA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tsparse

import sitter "github.com/tree-sitter/go-tree-sitter"

// Node is a wrapper around a tree-sitter node that carries the source
// bytes it was parsed from; byte-range slicing needs both.
type Node struct {
	node *sitter.Node
	src  []byte
}

// Kind returns the grammar's node type name (e.g. "call_expression").
func (n *Node) Kind() string {
	return n.node.Kind()
}

// StartByte returns the node's start byte offset.
func (n *Node) StartByte() uint {
	return uint(n.node.StartByte())
}

// EndByte returns the node's end byte offset (exclusive).
func (n *Node) EndByte() uint {
	return uint(n.node.EndByte())
}

// Text returns the exact source bytes spanned by the node.
func (n *Node) Text() []byte {
	return n.src[n.node.StartByte():n.node.EndByte()]
}

// StartLineColumn returns the node's start position as 1-indexed
// line/column, converting from tree-sitter's 0-indexed row/column.
func (n *Node) StartLineColumn() (line, column int) {
	p := n.node.StartPosition()
	return int(p.Row) + 1, int(p.Column) + 1
}

// EndLineColumn returns the node's end position as 1-indexed
// line/column, half-open (one past the last matched character).
func (n *Node) EndLineColumn() (line, column int) {
	p := n.node.EndPosition()
	return int(p.Row) + 1, int(p.Column) + 1
}

// NamedChildCount returns the number of named (non-anonymous) children.
func (n *Node) NamedChildCount() int {
	return int(n.node.NamedChildCount())
}

// ChildByFieldName returns the node's child with the given field name,
// or nil if absent.
func (n *Node) ChildByFieldName(name string) *Node {
	child := n.node.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return &Node{node: child, src: n.src}
}

// Parent returns the node's immediate parent, or nil at the root.
func (n *Node) Parent() *Node {
	p := n.node.Parent()
	if p == nil {
		return nil
	}
	return &Node{node: p, src: n.src}
}
