package index

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/soundscout/soundscout/core"
)

const (
	defaultNList     = 16
	defaultNProbe    = 4
	kMeansIterations = 20
	// Vectors per centroid accumulated before k-means training runs.
	trainMultiplier = 4
)

// IVF is the approximate inverted-file index. Vectors are partitioned
// into k-means clusters and a query probes only the nprobe nearest
// lists, so vectors assigned to unprobed clusters are invisible to
// that query. Recall improves with nprobe at the cost of scan work;
// nprobe equal to the centroid count degenerates to an exact scan.
//
// Training is lazy: until trainMultiplier vectors per centroid have
// accumulated, queries fall back to an exact scan. Centroids are
// learned once from that first population; later upserts are assigned
// to the nearest existing centroid.
type IVF struct {
	mu      sync.RWMutex
	dim     int
	nlist   int
	nprobe  int
	rng     *rand.Rand
	vectors map[core.ID][]float32

	trained   bool
	centroids [][]float32
	lists     [][]core.ID
	assign    map[core.ID]int
}

var _ Index = (*IVF)(nil)

func newIVF(cfg config) *IVF {
	nlist := cfg.nlist
	if nlist < 2 {
		nlist = defaultNList
	}
	nprobe := cfg.nprobe
	if nprobe < 1 {
		nprobe = defaultNProbe
	}
	if nprobe > nlist {
		nprobe = nlist
	}
	return &IVF{
		dim:     cfg.dim,
		nlist:   nlist,
		nprobe:  nprobe,
		rng:     rand.New(rand.NewSource(cfg.seed)),
		vectors: make(map[core.ID][]float32),
		assign:  make(map[core.ID]int),
	}
}

// Upsert stores a unit-normalized copy of the vector under the ID,
// assigning it to the nearest centroid once the index is trained.
func (ivf *IVF) Upsert(id core.ID, vector []float32) error {
	normalized, err := core.NormalizeVector(vector)
	if err != nil {
		return err
	}

	ivf.mu.Lock()
	defer ivf.mu.Unlock()

	if ivf.dim == 0 {
		ivf.dim = len(normalized)
	}
	if len(normalized) != ivf.dim {
		return fmt.Errorf("%w: got %d, index holds %d", ErrDimensionMismatch, len(normalized), ivf.dim)
	}

	if ivf.trained {
		ivf.removeFromList(id)
	}
	ivf.vectors[id] = normalized

	if ivf.trained {
		listIdx := ivf.nearestCentroid(normalized)
		ivf.lists[listIdx] = append(ivf.lists[listIdx], id)
		ivf.assign[id] = listIdx
	} else if len(ivf.vectors) >= ivf.nlist*trainMultiplier {
		ivf.train()
	}
	return nil
}

// Delete removes a vector by ID. Unknown IDs are ignored.
func (ivf *IVF) Delete(id core.ID) {
	ivf.mu.Lock()
	defer ivf.mu.Unlock()
	if ivf.trained {
		ivf.removeFromList(id)
	}
	delete(ivf.vectors, id)
}

// Query probes the nprobe nearest clusters and returns the topK most
// similar vectors found there. Before training it scans exhaustively.
func (ivf *IVF) Query(vector []float32, topK int) ([]core.SimilarityMatch, error) {
	if topK <= 0 {
		return nil, nil
	}
	query, err := core.NormalizeVector(vector)
	if err != nil {
		return nil, err
	}

	ivf.mu.RLock()
	if ivf.dim != 0 && len(query) != ivf.dim {
		ivf.mu.RUnlock()
		return nil, fmt.Errorf("%w: got %d, index holds %d", ErrDimensionMismatch, len(query), ivf.dim)
	}

	var matches []core.SimilarityMatch
	if !ivf.trained {
		matches = make([]core.SimilarityMatch, 0, len(ivf.vectors))
		for id, stored := range ivf.vectors {
			matches = append(matches, core.SimilarityMatch{
				AssetId: id,
				Score:   core.DotProduct(query, stored),
			})
		}
	} else {
		for _, listIdx := range ivf.nearestCentroids(query, ivf.nprobe) {
			for _, id := range ivf.lists[listIdx] {
				matches = append(matches, core.SimilarityMatch{
					AssetId: id,
					Score:   core.DotProduct(query, ivf.vectors[id]),
				})
			}
		}
	}
	ivf.mu.RUnlock()

	sortMatches(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len returns the number of stored vectors.
func (ivf *IVF) Len() int {
	ivf.mu.RLock()
	defer ivf.mu.RUnlock()
	return len(ivf.vectors)
}

// Dim returns the vector dimension, or 0 before the first Upsert.
func (ivf *IVF) Dim() int {
	ivf.mu.RLock()
	defer ivf.mu.RUnlock()
	return ivf.dim
}

// train learns centroids from the current population and builds the
// inverted lists. Caller must hold the write lock.
func (ivf *IVF) train() {
	vectors := make([][]float32, 0, len(ivf.vectors))
	ids := make([]core.ID, 0, len(ivf.vectors))
	for id, vec := range ivf.vectors {
		ids = append(ids, id)
		vectors = append(vectors, vec)
	}

	ivf.centroids = kMeans(vectors, ivf.nlist, kMeansIterations, ivf.rng)
	ivf.lists = make([][]core.ID, len(ivf.centroids))
	ivf.assign = make(map[core.ID]int, len(ids))

	for i, id := range ids {
		listIdx := ivf.nearestCentroid(vectors[i])
		ivf.lists[listIdx] = append(ivf.lists[listIdx], id)
		ivf.assign[id] = listIdx
	}
	ivf.trained = true
}

// removeFromList drops an ID from its inverted list. Caller must hold
// the write lock.
func (ivf *IVF) removeFromList(id core.ID) {
	listIdx, ok := ivf.assign[id]
	if !ok {
		return
	}
	list := ivf.lists[listIdx]
	for i, member := range list {
		if member == id {
			ivf.lists[listIdx] = append(list[:i], list[i+1:]...)
			break
		}
	}
	delete(ivf.assign, id)
}

// nearestCentroid finds the closest centroid for a vector.
func (ivf *IVF) nearestCentroid(vector []float32) int {
	minDist := float32(math.MaxFloat32)
	minIdx := 0
	for i, centroid := range ivf.centroids {
		dist := squaredDistance(vector, centroid)
		if dist < minDist {
			minDist = dist
			minIdx = i
		}
	}
	return minIdx
}

// nearestCentroids returns the indices of the n closest centroids.
func (ivf *IVF) nearestCentroids(vector []float32, n int) []int {
	type centroidDist struct {
		idx  int
		dist float32
	}
	dists := make([]centroidDist, len(ivf.centroids))
	for i, centroid := range ivf.centroids {
		dists[i] = centroidDist{i, squaredDistance(vector, centroid)}
	}
	slices.SortFunc(dists, func(a, b centroidDist) int {
		if a.dist < b.dist {
			return -1
		}
		if a.dist > b.dist {
			return 1
		}
		return a.idx - b.idx
	})

	if n > len(dists) {
		n = len(dists)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = dists[i].idx
	}
	return out
}

// kMeans clusters vectors into k centroids with k-means++ seeding.
func kMeans(vectors [][]float32, k, maxIters int, rng *rand.Rand) [][]float32 {
	if k > len(vectors) {
		k = len(vectors)
	}
	dim := len(vectors[0])

	// k-means++ initialization: first centroid uniform, the rest with
	// probability proportional to squared distance from chosen ones.
	centroids := make([][]float32, k)
	centroids[0] = slices.Clone(vectors[rng.Intn(len(vectors))])

	for i := 1; i < k; i++ {
		distances := make([]float32, len(vectors))
		totalDist := float32(0)

		for j, vec := range vectors {
			minDist := float32(math.MaxFloat32)
			for c := 0; c < i; c++ {
				dist := squaredDistance(vec, centroids[c])
				if dist < minDist {
					minDist = dist
				}
			}
			distances[j] = minDist
			totalDist += minDist
		}

		centroids[i] = slices.Clone(vectors[len(vectors)-1])
		r := rng.Float32() * totalDist
		cumSum := float32(0)
		for j, dist := range distances {
			cumSum += dist
			if cumSum >= r {
				centroids[i] = slices.Clone(vectors[j])
				break
			}
		}
	}

	assignments := make([]int, len(vectors))
	for iter := 0; iter < maxIters; iter++ {
		// Assign vectors to nearest centroid
		changed := false
		for i, vec := range vectors {
			minDist := float32(math.MaxFloat32)
			minIdx := 0
			for j, centroid := range centroids {
				dist := squaredDistance(vec, centroid)
				if dist < minDist {
					minDist = dist
					minIdx = j
				}
			}
			if assignments[i] != minIdx {
				changed = true
				assignments[i] = minIdx
			}
		}
		if !changed {
			break
		}

		// Recompute centroids as cluster means
		counts := make([]int, k)
		means := make([][]float32, k)
		for i := range means {
			means[i] = make([]float32, dim)
		}
		for i, vec := range vectors {
			cluster := assignments[i]
			counts[cluster]++
			for j := 0; j < dim; j++ {
				means[cluster][j] += vec[j]
			}
		}
		for i := range means {
			if counts[i] == 0 {
				// Keep the previous centroid for an empty cluster
				means[i] = centroids[i]
				continue
			}
			for j := 0; j < dim; j++ {
				means[i][j] /= float32(counts[i])
			}
		}
		centroids = means
	}

	return centroids
}

// squaredDistance computes squared Euclidean distance. Ordering only,
// so the square root is skipped.
func squaredDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
