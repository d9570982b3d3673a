package condition

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/nguyensu/xcsf/pkg/params"
)

// gpOp identifies a GP-tree node's operator.
type gpOp byte

const (
	gpVar gpOp = iota
	gpConst
	gpAdd
	gpSub
	gpMul
	gpDiv
	gpSin
	gpCos
)

func (op gpOp) arity() int {
	switch op {
	case gpVar, gpConst:
		return 0
	case gpSin, gpCos:
		return 1
	default:
		return 2
	}
}

// gpNode is one symbolic-expression tree node.
type gpNode struct {
	Op    gpOp
	Var   int
	Const float64
	Left  *gpNode
	Right *gpNode
}

func (n *gpNode) eval(x []float64) float64 {
	switch n.Op {
	case gpVar:
		return x[n.Var]
	case gpConst:
		return n.Const
	case gpAdd:
		return n.Left.eval(x) + n.Right.eval(x)
	case gpSub:
		return n.Left.eval(x) - n.Right.eval(x)
	case gpMul:
		return n.Left.eval(x) * n.Right.eval(x)
	case gpDiv:
		d := n.Right.eval(x)
		if math.Abs(d) < 1e-6 {
			return 1
		}
		return n.Left.eval(x) / d
	case gpSin:
		return math.Sin(n.Left.eval(x))
	case gpCos:
		return math.Cos(n.Left.eval(x))
	}
	return 0
}

func (n *gpNode) copy() *gpNode {
	if n == nil {
		return nil
	}
	return &gpNode{Op: n.Op, Var: n.Var, Const: n.Const, Left: n.Left.copy(), Right: n.Right.copy()}
}

func randomGPNode(depth, xdim int, rng *params.RNG) *gpNode {
	if depth <= 0 || rng.Bool(0.3) {
		if rng.Bool(0.5) {
			return &gpNode{Op: gpVar, Var: rng.Intn(xdim)}
		}
		return &gpNode{Op: gpConst, Const: rng.Uniform(-1, 1)}
	}
	ops := []gpOp{gpAdd, gpSub, gpMul, gpDiv, gpSin, gpCos}
	op := ops[rng.Intn(len(ops))]
	n := &gpNode{Op: op}
	n.Left = randomGPNode(depth-1, xdim, rng)
	if op.arity() == 2 {
		n.Right = randomGPNode(depth-1, xdim, rng)
	}
	return n
}

// collectAddrs gathers the address of every non-nil node pointer in the
// tree (including addr itself), letting crossover and point-mutation swap
// or replace a randomly chosen subtree in place without a parent link.
func collectAddrs(addr **gpNode, out *[]**gpNode) {
	if *addr == nil {
		return
	}
	*out = append(*out, addr)
	collectAddrs(&(*addr).Left, out)
	collectAddrs(&(*addr).Right, out)
}

// GPTree is a symbolic-expression condition; match iff evaluation exceeds
// zero.
type GPTree struct {
	Root *gpNode
	XDim int
}

func (g *GPTree) Kind() params.ConditionKind { return params.CondGPTree }

func (g *GPTree) Cover(p *params.Params, x []float64, rng *params.RNG) {
	g.XDim = len(x)
	g.Root = randomGPNode(3, g.XDim, rng)
	if g.Root.eval(x) <= 0 {
		g.Root = &gpNode{Op: gpAdd, Left: g.Root, Right: &gpNode{Op: gpConst, Const: 1 - g.Root.eval(x)}}
	}
}

func (g *GPTree) Match(x []float64) bool { return g.Root.eval(x) > 0 }

func (g *GPTree) Crossover(other Condition, rng *params.RNG) bool {
	o, ok := other.(*GPTree)
	if !ok {
		return false
	}
	var a, b []**gpNode
	collectAddrs(&g.Root, &a)
	collectAddrs(&o.Root, &b)
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	ai, bi := a[rng.Intn(len(a))], b[rng.Intn(len(b))]
	*ai, *bi = *bi, *ai
	return true
}

func (g *GPTree) Mutate(rng *params.RNG, p *params.Params) bool {
	var addrs []**gpNode
	collectAddrs(&g.Root, &addrs)
	changed := false
	for _, a := range addrs {
		if rng.Bool(p.PMutation) {
			*a = randomGPNode(2, g.XDim, rng)
			changed = true
		}
	}
	return changed
}

// General has no cheap closed form for symbolic expressions; always
// false, matching the Neural and DGP variants' conservative default.
func (g *GPTree) General(other Condition) bool { return false }

func (g *GPTree) Copy() Condition { return &GPTree{Root: g.Root.copy(), XDim: g.XDim} }

func saveGPNode(w io.Writer, n *gpNode) error {
	if n == nil {
		return binary.Write(w, binary.LittleEndian, byte(255))
	}
	if err := binary.Write(w, binary.LittleEndian, byte(n.Op)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(n.Var)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, n.Const); err != nil {
		return err
	}
	if n.Op.arity() >= 1 {
		if err := saveGPNode(w, n.Left); err != nil {
			return err
		}
	}
	if n.Op.arity() == 2 {
		if err := saveGPNode(w, n.Right); err != nil {
			return err
		}
	}
	return nil
}

func loadGPNode(r io.Reader) (*gpNode, error) {
	var tag byte
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, err
	}
	if tag == 255 {
		return nil, nil
	}
	n := &gpNode{Op: gpOp(tag)}
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return nil, err
	}
	n.Var = int(v)
	if err := binary.Read(r, binary.LittleEndian, &n.Const); err != nil {
		return nil, err
	}
	if n.Op.arity() >= 1 {
		l, err := loadGPNode(r)
		if err != nil {
			return nil, err
		}
		n.Left = l
	}
	if n.Op.arity() == 2 {
		rr, err := loadGPNode(r)
		if err != nil {
			return nil, err
		}
		n.Right = rr
	}
	return n, nil
}

func (g *GPTree) Save(w io.Writer) error {
	if err := writeTag(w, params.CondGPTree); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(g.XDim)); err != nil {
		return err
	}
	return saveGPNode(w, g.Root)
}

func loadGPTree(r io.Reader) (Condition, error) {
	var xdim uint32
	if err := binary.Read(r, binary.LittleEndian, &xdim); err != nil {
		return nil, err
	}
	root, err := loadGPNode(r)
	if err != nil {
		return nil, err
	}
	return &GPTree{Root: root, XDim: int(xdim)}, nil
}
