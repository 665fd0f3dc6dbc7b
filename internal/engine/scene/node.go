// Package scene provides a minimal transform hierarchy. Nodes own their
// children and carry attached components; systems that build geometry under
// a node (terrain patches, debug meshes) find entities again by child name.
package scene

import (
	"github.com/Faultbox/terragrid/pkg/math"
)

// Component is anything attachable to a node. OnNodeSet is called when the
// component is attached (with the node) and detached (with nil).
type Component interface {
	OnNodeSet(node *Node)
}

// Node is one element of the scene hierarchy.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	position math.Vec3
	rotation math.Quat
	scale    math.Vec3

	components []Component
}

// NewNode creates a detached root node.
func NewNode(name string) *Node {
	return &Node{
		name:     name,
		rotation: math.QuatIdentity(),
		scale:    math.Vec3One,
	}
}

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for roots.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children. The slice is owned by the node.
func (n *Node) Children() []*Node { return n.children }

// CreateChild creates and links a child node.
func (n *Node) CreateChild(name string) *Node {
	child := NewNode(name)
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// GetChild returns the first direct child with the given name, or nil.
func (n *Node) GetChild(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// RemoveChild unlinks the child and detaches its components.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			child.detachAll()
			return
		}
	}
}

func (n *Node) detachAll() {
	for _, comp := range n.components {
		comp.OnNodeSet(nil)
	}
	n.components = nil
	for _, c := range n.children {
		c.detachAll()
	}
}

// AddComponent attaches a component to the node.
func (n *Node) AddComponent(c Component) {
	n.components = append(n.components, c)
	c.OnNodeSet(n)
}

// Components returns the attached components.
func (n *Node) Components() []Component { return n.components }

// SetPosition sets the local position.
func (n *Node) SetPosition(p math.Vec3) { n.position = p }

// Position returns the local position.
func (n *Node) Position() math.Vec3 { return n.position }

// SetRotation sets the local rotation.
func (n *Node) SetRotation(r math.Quat) { n.rotation = r }

// Rotation returns the local rotation.
func (n *Node) Rotation() math.Quat { return n.rotation }

// SetScale sets the local scale.
func (n *Node) SetScale(s math.Vec3) { n.scale = s }

// Scale returns the local scale.
func (n *Node) Scale() math.Vec3 { return n.scale }

// LocalTransform returns the node's local TRS matrix.
func (n *Node) LocalTransform() math.Mat4 {
	return math.TRS(n.position, n.rotation, n.scale)
}

// WorldTransform returns the composed transform from the root down.
func (n *Node) WorldTransform() math.Mat4 {
	if n.parent == nil {
		return n.LocalTransform()
	}
	return n.parent.WorldTransform().Mul(n.LocalTransform())
}

// WorldPosition returns the node's origin in world space.
func (n *Node) WorldPosition() math.Vec3 {
	return n.WorldTransform().TransformVec3(math.Vec3Zero)
}

// WorldScale returns the accumulated scale down the parent chain.
// Exact only while ancestor rotations are axis-aligned.
func (n *Node) WorldScale() math.Vec3 {
	if n.parent == nil {
		return n.scale
	}
	return n.parent.WorldScale().Mul(n.scale)
}
