package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashFeatures builds a cache key for a feature vector. The model version is
// part of the key so a retrained model never serves stale cached predictions.
func HashFeatures(modelVersion string, features []float64) string {
	var sb strings.Builder
	sb.WriteString(modelVersion)
	for _, f := range features {
		fmt.Fprintf(&sb, "|%.17g", f)
	}
	return HashString(sb.String())
}
