package partition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

var (
	// ErrInvalidConfig is returned for a partition count below one or unusable settings.
	ErrInvalidConfig = errors.New("invalid partition config")

	// ErrDegenerateInput is returned for an empty or all-zero-weight sample set.
	ErrDegenerateInput = errors.New("degenerate partition input")
)

// Partitioner builds a partition tree from exploration samples.
type Partitioner interface {
	// Partition returns a tree with at most n leaves and the total leaf cost after each
	// split (costs[0] is the cost of the unsplit root).
	Partition(ctx context.Context, s *sample.Set, n int) (*Tree, []float64, error)
}

// Method selects the split strategy.
type Method int

const (
	// KDTree searches all eligible dimensions and split points for the lowest cost.
	KDTree Method = iota
	// Median splits the widest eligible dimension at the weighted median.
	Median
)

func (m Method) String() string {
	switch m {
	case KDTree:
		return "kd-tree"
	case Median:
		return "median"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses the String form of a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "kd-tree", "kdtree":
		return KDTree, nil
	case "median":
		return Median, nil
	}
	return 0, fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, s)
}

// Cost selects the cost functional of a leaf.
type Cost int

const (
	// CostLogDensityVariance is the weighted sum of squared deviations of the
	// log-density from its weighted mean.
	CostLogDensityVariance Cost = iota
	// CostCoordinateVariance is the weighted sum of squared deviations of the
	// coordinates, summed over dimensions.
	CostCoordinateVariance
)

func (c Cost) String() string {
	switch c {
	case CostLogDensityVariance:
		return "logd-variance"
	case CostCoordinateVariance:
		return "coordinate-variance"
	default:
		return fmt.Sprintf("Cost(%d)", int(c))
	}
}

// ParseCost parses the String form of a Cost.
func ParseCost(s string) (Cost, error) {
	switch s {
	case "", "logd-variance":
		return CostLogDensityVariance, nil
	case "coordinate-variance":
		return CostCoordinateVariance, nil
	}
	return 0, fmt.Errorf("%w: unknown cost %q", ErrInvalidConfig, s)
}

// Config configures a partitioner.
type Config struct {
	Method Method
	Cost   Cost

	// MinLeafSamples is the smallest sample count a leaf must hold to be split.
	// Default 10.
	MinLeafSamples int

	// Dims restricts splits to these dimensions. Empty means all dimensions.
	Dims []int
}

// DefaultConfig returns the default KD-tree configuration.
func DefaultConfig() Config {
	return Config{
		Method:         KDTree,
		Cost:           CostLogDensityVariance,
		MinLeafSamples: 10,
	}
}

// OrDefault fills zero fields with defaults.
func (c Config) OrDefault() Config {
	if c.MinLeafSamples <= 0 {
		c.MinLeafSamples = DefaultConfig().MinLeafSamples
	}
	return c
}

// New creates a partitioner.
func New(cfg Config) (Partitioner, error) {
	cfg = cfg.OrDefault()
	if cfg.Method != KDTree && cfg.Method != Median {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, cfg.Method)
	}
	if cfg.Cost != CostLogDensityVariance && cfg.Cost != CostCoordinateVariance {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, cfg.Cost)
	}
	for _, d := range cfg.Dims {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrInvalidConfig, d)
		}
	}
	return &treePartitioner{cfg: cfg}, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config) Partitioner {
	p, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

type treePartitioner struct {
	cfg Config
}

// split describes a candidate cut of a leaf.
type split struct {
	dim   int
	at    float64
	left  []uint32
	right []uint32
	cost  float64 // summed child cost
}

// Partition implements Partitioner.
func (p *treePartitioner) Partition(ctx context.Context, s *sample.Set, n int) (*Tree, []float64, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("%w: partition count %d < 1", ErrInvalidConfig, n)
	}
	if s.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: no samples", ErrDegenerateInput)
	}
	if !(s.WeightSum() > 0) {
		return nil, nil, fmt.Errorf("%w: all sample weights are zero", ErrDegenerateInput)
	}

	dims, err := p.dims(s.Dim())
	if err != nil {
		return nil, nil, err
	}

	all := make([]uint32, s.Len())
	for i := range all {
		all[i] = uint32(i)
	}
	lo, hi := s.BoundingBox()
	eval := newCoster(s, p.cfg.Cost)

	root := newLeaf(density.NewBounds(lo, hi), all, eval.cost(all))
	leaves := []*Node{root}
	costs := []float64{root.Cost}
	splits := map[*Node]*split{}

	for len(leaves) < n {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		pos, best := p.pick(leaves, splits, s, dims, eval)
		if best == nil {
			break
		}

		leaf := leaves[pos]
		left, right := leaf.Bounds.Clone(), leaf.Bounds.Clone()
		left.Hi[best.dim] = best.at
		right.Lo[best.dim] = best.at

		leaf.SplitDim = best.dim
		leaf.SplitAt = best.at
		leaf.Left = newLeaf(left, best.left, eval.cost(best.left))
		leaf.Right = newLeaf(right, best.right, eval.cost(best.right))
		delete(splits, leaf)

		leaves = slices.Replace(leaves, pos, pos+1, leaf.Left, leaf.Right)

		total := 0.0
		for _, l := range leaves {
			total += l.Cost
		}
		costs = append(costs, total)
	}

	return newTree(root), costs, nil
}

// pick returns the position of the highest-cost splittable leaf and its split.
// Ties in cost go to the leftmost leaf.
func (p *treePartitioner) pick(leaves []*Node, splits map[*Node]*split, s *sample.Set, dims []int, eval *coster) (int, *split) {
	order := make([]int, len(leaves))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case leaves[a].Cost > leaves[b].Cost:
			return -1
		case leaves[a].Cost < leaves[b].Cost:
			return 1
		}
		return 0
	})

	for _, pos := range order {
		leaf := leaves[pos]
		if int(leaf.Indices.GetCardinality()) < max(p.cfg.MinLeafSamples, 2) {
			continue
		}
		sp, ok := splits[leaf]
		if !ok {
			idx := leaf.Indices.ToArray()
			if p.cfg.Method == Median {
				sp = medianSplit(s, idx, dims, eval)
			} else {
				sp = bestSplit(s, idx, dims, eval)
			}
			splits[leaf] = sp
		}
		if sp != nil {
			return pos, sp
		}
	}
	return -1, nil
}

func (p *treePartitioner) dims(dim int) ([]int, error) {
	if len(p.cfg.Dims) == 0 {
		out := make([]int, dim)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	out := slices.Clone(p.cfg.Dims)
	slices.Sort(out)
	out = slices.Compact(out)
	if out[len(out)-1] >= dim {
		return nil, fmt.Errorf("%w: dimension %d out of range for %d-dimensional samples", ErrInvalidConfig, out[len(out)-1], dim)
	}
	return out, nil
}

func newLeaf(b density.Bounds, idx []uint32, cost float64) *Node {
	bm := roaring.New()
	bm.AddMany(idx)
	return &Node{
		Bounds:   b,
		Cost:     cost,
		Indices:  bm,
		SplitDim: -1,
		SplitAt:  math.NaN(),
	}
}
