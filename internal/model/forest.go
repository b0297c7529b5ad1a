package model

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ForestRegressor averages an ensemble of CART regression trees grown on
// bootstrap samples with per-split feature subsampling. The seed fixes both
// the bootstrap draws and the feature choices, so a given (data, seed) pair
// always produces the same forest.
type ForestRegressor struct {
	NumTrees       int
	MaxDepth       int
	MinSamplesLeaf int
	Seed           int64
	Trees          []*TreeNode
}

// TreeNode is one node of a regression tree. Leaves have nil children and
// carry the mean target of the samples that reached them.
type TreeNode struct {
	Feature   int
	Threshold float64
	Value     float64
	Left      *TreeNode
	Right     *TreeNode
}

func NewForestRegressor(numTrees int, seed int64) *ForestRegressor {
	return &ForestRegressor{
		NumTrees:       numTrees,
		MaxDepth:       16,
		MinSamplesLeaf: 2,
		Seed:           seed,
	}
}

func (f *ForestRegressor) Fit(X *mat.Dense, y []float64) error {
	rows, cols := X.Dims()
	if rows == 0 {
		return fmt.Errorf("random forest: empty training set")
	}
	if len(y) != rows {
		return fmt.Errorf("random forest: %d rows but %d targets", rows, len(y))
	}
	if f.NumTrees <= 0 {
		return fmt.Errorf("random forest: tree count must be positive, got %d", f.NumTrees)
	}

	mtry := cols / 3
	if mtry < 1 {
		mtry = 1
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Trees = make([]*TreeNode, f.NumTrees)
	for t := 0; t < f.NumTrees; t++ {
		treeRng := rand.New(rand.NewSource(rng.Int63()))
		sample := make([]int, rows)
		for i := range sample {
			sample[i] = treeRng.Intn(rows)
		}
		f.Trees[t] = f.growTree(X, y, sample, 0, mtry, treeRng)
	}
	return nil
}

func (f *ForestRegressor) growTree(X *mat.Dense, y []float64, idx []int, depth, mtry int, rng *rand.Rand) *TreeNode {
	mean, sse := meanSSE(y, idx)
	if depth >= f.MaxDepth || len(idx) < 2*f.MinSamplesLeaf || sse == 0 {
		return &TreeNode{Value: mean}
	}

	feature, threshold, ok := f.bestSplit(X, y, idx, mtry, rng)
	if !ok {
		return &TreeNode{Value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < f.MinSamplesLeaf || len(right) < f.MinSamplesLeaf {
		return &TreeNode{Value: mean}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Value:     mean,
		Left:      f.growTree(X, y, left, depth+1, mtry, rng),
		Right:     f.growTree(X, y, right, depth+1, mtry, rng),
	}
}

func (f *ForestRegressor) bestSplit(X *mat.Dense, y []float64, idx []int, mtry int, rng *rand.Rand) (int, float64, bool) {
	_, cols := X.Dims()
	features := rng.Perm(cols)[:mtry]

	bestScore := -1.0
	bestFeature := -1
	bestThreshold := 0.0

	type pair struct {
		x, y float64
	}

	for _, feature := range features {
		pairs := make([]pair, len(idx))
		for k, i := range idx {
			pairs[k] = pair{X.At(i, feature), y[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].x < pairs[b].x })

		var totalSum, totalSq float64
		for _, p := range pairs {
			totalSum += p.y
			totalSq += p.y * p.y
		}

		var leftSum, leftSq float64
		n := len(pairs)
		for k := 0; k < n-1; k++ {
			leftSum += pairs[k].y
			leftSq += pairs[k].y * pairs[k].y
			if pairs[k].x == pairs[k+1].x {
				continue
			}
			nl, nr := k+1, n-k-1
			if nl < f.MinSamplesLeaf || nr < f.MinSamplesLeaf {
				continue
			}
			sseLeft := leftSq - leftSum*leftSum/float64(nl)
			rightSum := totalSum - leftSum
			sseRight := (totalSq - leftSq) - rightSum*rightSum/float64(nr)
			score := sseLeft + sseRight
			if bestFeature == -1 || score < bestScore {
				bestScore = score
				bestFeature = feature
				bestThreshold = (pairs[k].x + pairs[k+1].x) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature != -1
}

func (f *ForestRegressor) Predict(X *mat.Dense) []float64 {
	rows, _ := X.Dims()
	preds := make([]float64, rows)
	if len(f.Trees) == 0 {
		return preds
	}
	for i := 0; i < rows; i++ {
		var sum float64
		for _, root := range f.Trees {
			sum += predictTree(root, X, i)
		}
		preds[i] = sum / float64(len(f.Trees))
	}
	return preds
}

func predictTree(node *TreeNode, X *mat.Dense, row int) float64 {
	for node.Left != nil && node.Right != nil {
		if X.At(row, node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

func meanSSE(y []float64, idx []int) (float64, float64) {
	var sum, sq float64
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	n := float64(len(idx))
	if n == 0 {
		return 0, 0
	}
	mean := sum / n
	return mean, sq - sum*sum/n
}
