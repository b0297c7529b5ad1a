package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSyntheticDeterministic(t *testing.T) {
	a := Synthetic(50, 42)
	b := Synthetic(50, 42)

	assert.True(t, mat.Equal(a.X, b.X))
	assert.Equal(t, a.Y, b.Y)

	c := Synthetic(50, 43)
	assert.False(t, mat.Equal(a.X, c.X))
}

func TestSyntheticTargetBounds(t *testing.T) {
	ds := Synthetic(500, 7)
	require.Equal(t, 500, ds.Len())

	for _, v := range ds.Y {
		assert.GreaterOrEqual(t, v, syntheticMin)
		assert.LessOrEqual(t, v, syntheticMax)
	}

	// the target spread must cross both triage thresholds
	min, max := ds.MinMax()
	assert.Less(t, min, 100.0)
	assert.Greater(t, max, 200.0)
}

func TestSplitSizesAndDisjointness(t *testing.T) {
	ds := Synthetic(100, 1)

	train, test, err := ds.Split(0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, test.Len())

	// same seed, same split
	train2, test2, err := ds.Split(0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train.Y, train2.Y)
	assert.Equal(t, test.Y, test2.Y)
}

func TestSplitValidation(t *testing.T) {
	ds := Synthetic(10, 1)

	_, _, err := ds.Split(0, 1)
	assert.Error(t, err)
	_, _, err = ds.Split(1.5, 1)
	assert.Error(t, err)
	_, _, err = ds.Split(0.01, 1)
	assert.Error(t, err)
}

func TestKFoldsPartition(t *testing.T) {
	ds := Synthetic(23, 9)

	folds, err := ds.KFolds(5, 42)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	seen := make(map[int]int)
	for _, fold := range folds {
		assert.NotEmpty(t, fold)
		for _, idx := range fold {
			seen[idx]++
		}
	}
	require.Len(t, seen, 23)
	for idx, n := range seen {
		assert.Equalf(t, 1, n, "index %d appears %d times", idx, n)
	}
}

func TestComplement(t *testing.T) {
	ds := Synthetic(5, 1)
	assert.Equal(t, []int{0, 2, 4}, ds.Complement([]int{1, 3}))
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	csv := "age,sex,bmi,bp,s1,s2,s3,s4,s5,s6,target\n" +
		"0.01,0.02,0.03,0.04,0.05,0.06,0.07,0.08,0.09,0.1,151\n" +
		"-0.01,-0.02,-0.03,-0.04,-0.05,-0.06,-0.07,-0.08,-0.09,-0.1,75\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	ds, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []float64{151, 75}, ds.Y)
	assert.Equal(t, 0.03, ds.X.At(0, 2))
	assert.Equal(t, -0.1, ds.X.At(1, 9))
}

func TestLoadCSVErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	short := filepath.Join(dir, "short.csv")
	require.NoError(t, os.WriteFile(short, []byte("age,sex,target\n1,2,3\n"), 0644))
	_, err = LoadCSV(short)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte(
		"age,sex,bmi,bp,s1,s2,s3,s4,s5,s6,target\n0.01,x,0.03,0.04,0.05,0.06,0.07,0.08,0.09,0.1,151\n"), 0644))
	_, err = LoadCSV(bad)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sex")
}
