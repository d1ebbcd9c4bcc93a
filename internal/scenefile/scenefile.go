// Package scenefile loads arbor trees and pointer scripts from TOML.
//
// A file holds nested [[node]] tables and a flat list of [[step]] tables:
//
//	[[node]]
//	name = "panel"
//	kind = "group"
//	depth = 2
//
//	  [[node.node]]
//	  name = "button"
//	  rect = [0, 0, 40, 20]
//
//	[[step]]
//	type = "pointerdown"
//	x = 10
//	y = 10
//
// Step types are the pointer event names (pointerdown, pointerup,
// pointermove, click) plus the reorder operations bringToFront, sendToBack,
// bringForward and sendBackward, remove, and scroll for viewports.
package scenefile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/phanxgames/arbor"
)

// ErrUnknownNode is returned when a step names a node the tree lacks.
var ErrUnknownNode = errors.New("unknown node")

// File is the decoded form of a scene file.
type File struct {
	Nodes []NodeSpec `toml:"node"`
	Steps []Step     `toml:"step"`
}

// NodeSpec describes one node and its children.
type NodeSpec struct {
	Name        string     `toml:"name"`
	Kind        string     `toml:"kind"` // shape (default), group, viewport
	X           float64    `toml:"x"`
	Y           float64    `toml:"y"`
	Depth       *int       `toml:"depth"`
	Interactive *bool      `toml:"interactive"`
	Visible     *bool      `toml:"visible"`
	Rect        []float64  `toml:"rect"`   // x, y, w, h
	Circle      []float64  `toml:"circle"` // cx, cy, r
	Size        []float64  `toml:"size"`   // viewport w, h
	Scroll      []float64  `toml:"scroll"` // viewport scroll x, y
	Entity      uint32     `toml:"entity"`
	Children    []NodeSpec `toml:"node"`
}

// Step is one scripted action.
type Step struct {
	Type string  `toml:"type"`
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
	Node string  `toml:"node"`
}

// Tree is a built scene: a root group plus a name index.
type Tree struct {
	Root   *arbor.Group
	ByName map[string]arbor.Node
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes a scene file. Unknown keys are rejected.
func Parse(data string) (*File, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("decode scene file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode scene file: unknown keys %s", strings.Join(keys, ", "))
	}
	for i, st := range f.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &f, nil
}

// Build creates the node tree described by f under a fresh root group.
func (f *File) Build() (*Tree, error) {
	t := &Tree{Root: arbor.NewGroup("root"), ByName: make(map[string]arbor.Node)}
	for i := range f.Nodes {
		n, err := t.build(&f.Nodes[i])
		if err != nil {
			return nil, err
		}
		t.Root.Add(n)
	}
	return t, nil
}

func (t *Tree) build(ns *NodeSpec) (arbor.Node, error) {
	if ns.Name == "" {
		return nil, errors.New("build node: missing name")
	}
	if _, dup := t.ByName[ns.Name]; dup {
		return nil, fmt.Errorf("build node %q: duplicate name", ns.Name)
	}
	hit, err := ns.hitShape()
	if err != nil {
		return nil, fmt.Errorf("build node %q: %w", ns.Name, err)
	}

	var n arbor.Node
	var children *arbor.Layer
	switch ns.Kind {
	case "", "shape":
		if len(ns.Children) > 0 {
			return nil, fmt.Errorf("build node %q: shapes cannot have children", ns.Name)
		}
		n = arbor.NewShape(ns.Name, hit)
	case "group":
		g := arbor.NewGroup(ns.Name)
		g.HitShape = hit
		g.Interactive = hit != nil
		n, children = g, g.Children()
	case "viewport":
		if len(ns.Size) != 2 {
			return nil, fmt.Errorf("build node %q: viewport needs size = [w, h]", ns.Name)
		}
		v := arbor.NewViewport(ns.Name, ns.Size[0], ns.Size[1])
		if len(ns.Scroll) == 2 {
			v.ScrollX, v.ScrollY = ns.Scroll[0], ns.Scroll[1]
		}
		n, children = v, v.Children()
	default:
		return nil, fmt.Errorf("build node %q: unknown kind %q", ns.Name, ns.Kind)
	}

	applyCommon(n, ns)
	t.ByName[ns.Name] = n

	for i := range ns.Children {
		child, err := t.build(&ns.Children[i])
		if err != nil {
			return nil, err
		}
		children.Add(child)
	}
	return n, nil
}

// nodeFields is the subset of arbor.NodeBase used when applying a NodeSpec.
type nodeFields interface {
	SetPosition(x, y float64)
	SetDepth(z int)
}

func applyCommon(n arbor.Node, ns *NodeSpec) {
	if nf, ok := n.(nodeFields); ok {
		nf.SetPosition(ns.X, ns.Y)
		if ns.Depth != nil {
			nf.SetDepth(*ns.Depth)
		}
	}
	var base *arbor.NodeBase
	switch v := n.(type) {
	case *arbor.Shape:
		base = &v.NodeBase
	case *arbor.Group:
		base = &v.NodeBase
	case *arbor.Viewport:
		base = &v.NodeBase
	default:
		return
	}
	if ns.Interactive != nil {
		base.Interactive = *ns.Interactive
	}
	if ns.Visible != nil {
		base.Visible = *ns.Visible
	}
	base.EntityID = ns.Entity
}

func (ns *NodeSpec) hitShape() (arbor.HitShape, error) {
	switch {
	case len(ns.Rect) > 0 && len(ns.Circle) > 0:
		return nil, errors.New("rect and circle are mutually exclusive")
	case len(ns.Rect) > 0:
		if len(ns.Rect) != 4 {
			return nil, errors.New("rect needs [x, y, w, h]")
		}
		return arbor.HitRect{X: ns.Rect[0], Y: ns.Rect[1], Width: ns.Rect[2], Height: ns.Rect[3]}, nil
	case len(ns.Circle) > 0:
		if len(ns.Circle) != 3 {
			return nil, errors.New("circle needs [cx, cy, r]")
		}
		return arbor.HitCircle{CenterX: ns.Circle[0], CenterY: ns.Circle[1], Radius: ns.Circle[2]}, nil
	}
	return nil, nil
}

var reorderSteps = map[string]bool{
	"bringToFront": true,
	"sendToBack":   true,
	"bringForward": true,
	"sendBackward": true,
	"remove":       true,
}

func (st Step) validate() error {
	if t, ok := arbor.ParseEventType(st.Type); ok {
		if !t.IsDiscrete() && t != arbor.EventPointerMove {
			return fmt.Errorf("event %q cannot be scripted", st.Type)
		}
		return nil
	}
	if reorderSteps[st.Type] || st.Type == "scroll" {
		if st.Node == "" {
			return fmt.Errorf("%s needs a node", st.Type)
		}
		return nil
	}
	return fmt.Errorf("unknown step type %q", st.Type)
}

// Apply performs one step against the tree, dispatching pointer steps
// through d. Scroll steps re-run hover at the last pointer position. It
// returns the node that consumed a pointer step, if any.
func (t *Tree) Apply(d *arbor.Dispatcher, st Step) (arbor.Node, error) {
	if et, ok := arbor.ParseEventType(st.Type); ok {
		return d.Dispatch(arbor.PointerEvent{Type: et, X: st.X, Y: st.Y}), nil
	}
	n, ok := t.ByName[st.Node]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", st.Type, st.Node, ErrUnknownNode)
	}
	owner := ownerOf(n)
	switch st.Type {
	case "bringToFront":
		owner.BringToFront(n)
	case "sendToBack":
		owner.SendToBack(n)
	case "bringForward":
		owner.BringForward(n)
	case "sendBackward":
		owner.SendBackward(n)
	case "remove":
		owner.Remove(n)
	case "scroll":
		v, ok := n.(*arbor.Viewport)
		if !ok {
			return nil, fmt.Errorf("scroll %q: not a viewport", st.Node)
		}
		v.ScrollBy(st.X, st.Y)
		d.RefreshHover()
	}
	return nil, nil
}

// ownerOf returns n's layer. Detached nodes get a throwaway layer so reorder
// calls log their usual warning instead of failing here.
func ownerOf(n arbor.Node) *arbor.Layer {
	type owned interface{ Owner() *arbor.Layer }
	if o, ok := n.(owned); ok && o.Owner() != nil {
		return o.Owner()
	}
	return arbor.NewLayer()
}
