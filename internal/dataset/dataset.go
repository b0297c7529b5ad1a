package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// FeatureNames are the ten normalized physiological measurements of the
// diabetes progression dataset, in column order.
var FeatureNames = []string{"age", "sex", "bmi", "bp", "s1", "s2", "s3", "s4", "s5", "s6"}

// NumFeatures is the width of every feature matrix in the system.
const NumFeatures = 10

type Dataset struct {
	X *mat.Dense
	Y []float64
}

func (d *Dataset) Len() int {
	if d.X == nil {
		return 0
	}
	rows, _ := d.X.Dims()
	return rows
}

// LoadCSV reads a headered CSV with the ten feature columns followed by a
// target column.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset file %s has no data rows", path)
	}

	header := records[0]
	if len(header) != NumFeatures+1 {
		return nil, fmt.Errorf("dataset file %s has %d columns, want %d features plus target", path, len(header), NumFeatures)
	}

	rows := len(records) - 1
	X := mat.NewDense(rows, NumFeatures, nil)
	y := make([]float64, rows)

	for i, record := range records[1:] {
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset row %d column %q: %w", i+1, header[j], err)
			}
			if j < NumFeatures {
				X.Set(i, j, v)
			} else {
				y[i] = v
			}
		}
	}

	return &Dataset{X: X, Y: y}, nil
}

// syntheticWeights shape the target so that its range and the contribution of
// each feature resemble the classic diabetes progression data: values mostly
// in the 25-346 band, dominated by bmi, s5 and bp.
var syntheticWeights = []float64{60, -220, 520, 330, -180, 110, -230, 160, 480, 70}

const (
	syntheticBase    = 152.0
	syntheticFeatStd = 0.0476
	syntheticNoise   = 48.0
	syntheticMin     = 25.0
	syntheticMax     = 346.0
)

// Synthetic generates a deterministic diabetes-like dataset: ten zero-centered
// normalized features and a positive progression target. The same (n, seed)
// pair always yields the same data.
func Synthetic(n int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))

	X := mat.NewDense(n, NumFeatures, nil)
	y := make([]float64, n)

	for i := 0; i < n; i++ {
		target := syntheticBase
		for j := 0; j < NumFeatures; j++ {
			v := rng.NormFloat64() * syntheticFeatStd
			X.Set(i, j, v)
			target += syntheticWeights[j] * v
		}
		target += rng.NormFloat64() * syntheticNoise
		if target < syntheticMin {
			target = syntheticMin
		}
		if target > syntheticMax {
			target = syntheticMax
		}
		y[i] = target
	}

	return &Dataset{X: X, Y: y}
}

// Split shuffles the rows with the given seed and carves off testSize of them
// as the held-out split.
func (d *Dataset) Split(testSize float64, seed int64) (train, test *Dataset, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0,1), got %g", testSize)
	}

	n := d.Len()
	testN := int(float64(n) * testSize)
	if testN == 0 || testN == n {
		return nil, nil, fmt.Errorf("test size %g leaves an empty split for %d rows", testSize, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = d.subset(perm[:testN])
	train = d.subset(perm[testN:])
	return train, test, nil
}

// KFolds partitions row indices into k contiguous validation folds after a
// seeded shuffle. Each element is the validation index set of one fold.
func (d *Dataset) KFolds(k int, seed int64) ([][]int, error) {
	n := d.Len()
	if k < 2 || k > n {
		return nil, fmt.Errorf("fold count must be in [2,%d], got %d", n, k)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds, nil
}

// Subset returns the rows at the given indices as a new dataset.
func (d *Dataset) Subset(idx []int) *Dataset {
	return d.subset(idx)
}

func (d *Dataset) subset(idx []int) *Dataset {
	X := mat.NewDense(len(idx), NumFeatures, nil)
	y := make([]float64, len(idx))
	for i, src := range idx {
		for j := 0; j < NumFeatures; j++ {
			X.Set(i, j, d.X.At(src, j))
		}
		y[i] = d.Y[src]
	}
	return &Dataset{X: X, Y: y}
}

// Complement returns all row indices of d not present in idx, preserving order.
func (d *Dataset) Complement(idx []int) []int {
	in := make(map[int]bool, len(idx))
	for _, i := range idx {
		in[i] = true
	}
	var out []int
	for i := 0; i < d.Len(); i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

// MinMax returns the smallest and largest target values.
func (d *Dataset) MinMax() (min, max float64) {
	if len(d.Y) == 0 {
		return 0, 0
	}
	min, max = d.Y[0], d.Y[0]
	for _, v := range d.Y[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
