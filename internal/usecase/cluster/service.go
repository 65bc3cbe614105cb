// Package cluster reduces, partitions and projects a batch of feature vectors.
package cluster

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/features"
	"github.com/kailas-cloud/veritas/internal/domain/item"
)

const (
	defaultMaxComponents = 50
	defaultMaxClusters   = 3
	projectionDims       = 2
)

// Config controls the clustering stage.
type Config struct {
	Enabled       bool
	Seed          uint64
	MaxComponents int
	MaxClusters   int
}

// Service is the batch-level ClusterProjector. It holds no mutable state.
type Service struct {
	cfg Config
}

// New creates a cluster service, filling zero limits with defaults.
func New(cfg Config) *Service {
	if cfg.MaxComponents <= 0 {
		cfg.MaxComponents = defaultMaxComponents
	}
	if cfg.MaxClusters <= 0 {
		cfg.MaxClusters = defaultMaxClusters
	}
	return &Service{cfg: cfg}
}

// Enabled reports whether the clustering capability is switched on.
func (s *Service) Enabled() bool { return s != nil && s.cfg.Enabled }

// Project assigns a placement to every vector, or fails for the whole batch.
// A returned error wraps domain.ErrDegraded; placements are then nil.
// Coord is nil on every placement when the working space has fewer than two dimensions.
func (s *Service) Project(vectors []features.Vector) (placements []item.Placement, err error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: clustering disabled", domain.ErrDegraded)
	}
	if len(vectors) < 2 {
		return nil, fmt.Errorf("%w: batch of %d items", domain.ErrDegraded, len(vectors))
	}

	defer func() {
		if r := recover(); r != nil {
			placements = nil
			err = fmt.Errorf("%w: numeric failure: %v", domain.ErrDegraded, r)
		}
	}()

	x, err := matrix(vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDegraded, err)
	}
	n, d := x.Dims()

	space := x
	if target := min(s.cfg.MaxComponents, d-1, n-1); target > 1 {
		if space, err = reduce(x, target); err != nil {
			return nil, fmt.Errorf("%w: reduce: %w", domain.ErrDegraded, err)
		}
	}

	k := min(s.cfg.MaxClusters, n)
	labels := make([]int, n)
	if k > 1 {
		labels = kmeans(space, k, s.cfg.Seed)
	}

	coords, err := project(space)
	if err != nil {
		return nil, fmt.Errorf("%w: project: %w", domain.ErrDegraded, err)
	}

	placements = make([]item.Placement, n)
	for i := range placements {
		placements[i] = item.Placement{Cluster: labels[i]}
		if coords != nil {
			c := [2]float64{coords.At(i, 0), coords.At(i, 1)}
			placements[i].Coord = &c
		}
	}
	return placements, nil
}

// matrix stacks the vectors as rows of a dense n×d matrix.
func matrix(vectors []features.Vector) (*mat.Dense, error) {
	d := vectors[0].Dim()
	if d == 0 {
		return nil, errors.New("zero-dimensional feature space")
	}
	x := mat.NewDense(len(vectors), d, nil)
	for i, v := range vectors {
		if v.Dim() != d {
			return nil, fmt.Errorf("row %d has dimension %d, want %d", i, v.Dim(), d)
		}
		for _, e := range v.Entries() {
			x.Set(i, e.Index, e.Value)
		}
	}
	return x, nil
}

// project returns n×2 coordinates, or nil when the space has fewer than two dimensions.
func project(space *mat.Dense) (*mat.Dense, error) {
	_, d := space.Dims()
	switch {
	case d < projectionDims:
		return nil, nil
	case d == projectionDims:
		return space, finite(space)
	default:
		return reduce(space, projectionDims)
	}
}

// reduce projects the centered rows of x onto its first target principal components.
func reduce(x *mat.Dense, target int) (*mat.Dense, error) {
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("principal components decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	d, c := vecs.Dims()
	if c < target {
		return nil, fmt.Errorf("only %d components available, want %d", c, target)
	}

	var out mat.Dense
	out.Mul(center(x), vecs.Slice(0, d, 0, target))
	if err := finite(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func center(x *mat.Dense) *mat.Dense {
	n, d := x.Dims()
	out := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			out.Set(i, j, col[i]-mean)
		}
	}
	return out
}

func finite(m *mat.Dense) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite value at (%d,%d)", i, j)
			}
		}
	}
	return nil
}
