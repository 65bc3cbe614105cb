package cluster

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const maxIterations = 100

// kmeans partitions the rows of x into k clusters with k-means++ seeding.
// The same seed on the same input yields the same labels.
func kmeans(x *mat.Dense, k int, seed uint64) []int {
	n, d := x.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	centroids := seedCentroids(rows, k, rng)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, row := range rows {
			best := nearest(row, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCentroids(rows, labels, centroids, d)
	}
	return labels
}

// seedCentroids picks k initial centroids by D² sampling.
func seedCentroids(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(rows)
	chosen := make([]bool, n)
	centroids := make([][]float64, 0, k)

	first := rng.IntN(n)
	chosen[first] = true
	centroids = append(centroids, clone(rows[first]))

	dist := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, row := range rows {
			dist[i] = sqDist(row, centroids[nearest(row, centroids)])
			total += dist[i]
		}

		next := -1
		if total > 0 {
			r := rng.Float64() * total
			for i, w := range dist {
				r -= w
				if r < 0 && !chosen[i] {
					next = i
					break
				}
			}
		}
		if next < 0 {
			// duplicate points: take the first unused row
			for i := range rows {
				if !chosen[i] {
					next = i
					break
				}
			}
		}
		chosen[next] = true
		centroids = append(centroids, clone(rows[next]))
	}
	return centroids
}

func updateCentroids(rows [][]float64, labels []int, centroids [][]float64, d int) {
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, d)
	}
	for i, row := range rows {
		floats.Add(sums[labels[i]], row)
		counts[labels[i]]++
	}
	for c := range centroids {
		// empty clusters keep their previous centroid
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centroids[c] = sums[c]
	}
}

func nearest(row []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if dd := sqDist(row, centroid); dd < bestDist {
			best, bestDist = c, dd
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
