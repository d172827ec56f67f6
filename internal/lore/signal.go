package lore

import (
	"fmt"
	"strings"

	"github.com/raysh454/georisk/internal/utils"
)

// ReductionPolicy selects how a site's scored records collapse into one
// lore signal.
type ReductionPolicy string

const (
	ReduceMax             ReductionPolicy = "max"
	ReduceMean            ReductionPolicy = "mean"
	ReduceRecencyWeighted ReductionPolicy = "recency_weighted"
)

// ParseReductionPolicy accepts the policy names case-insensitively. The
// empty string selects ReduceMax.
func ParseReductionPolicy(s string) (ReductionPolicy, error) {
	switch p := ReductionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ReduceMax, nil
	case ReduceMax, ReduceMean, ReduceRecencyWeighted:
		return p, nil
	default:
		return "", fmt.Errorf("unknown reduction policy %q", s)
	}
}

// Reduce collapses the l_scores of records into a single signal in [0, 1].
// Unscored records are ignored; no scored records yields 0.
func Reduce(records []Record, policy ReductionPolicy) float64 {
	var (
		n              int
		peak, sum      float64
		wsum, weighted float64
	)
	for i := range records {
		r := &records[i]
		if !r.Scored() {
			continue
		}
		l := *r.LScore
		n++
		sum += l
		if l > peak {
			peak = l
		}
		if r.RecentScore != nil {
			wsum += *r.RecentScore
			weighted += *r.RecentScore * l
		}
	}
	if n == 0 {
		return 0
	}

	switch policy {
	case ReduceMean:
		return utils.Clip01(sum / float64(n))
	case ReduceRecencyWeighted:
		if wsum == 0 {
			return utils.Clip01(sum / float64(n))
		}
		return utils.Clip01(weighted / wsum)
	default:
		return utils.Clip01(peak)
	}
}
