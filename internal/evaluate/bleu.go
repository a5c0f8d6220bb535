// Package evaluate scores candidate summaries against references with a
// word-level BLEU metric.
package evaluate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/preprocess"
	"github.com/localrivet/clustersummary/internal/telemetry"
)

const (
	// DefaultMaxOrder is the longest n-gram compared.
	DefaultMaxOrder = 4

	// DefaultEpsilon is added to zero n-gram matches under SmoothingEpsilon.
	DefaultEpsilon = 0.1
)

// Smoothing selects how zero n-gram matches are handled.
type Smoothing string

const (
	// SmoothingNone scores 0 as soon as one order has no match.
	SmoothingNone Smoothing = "none"

	// SmoothingEpsilon replaces a zero match count by a small epsilon.
	SmoothingEpsilon Smoothing = "epsilon"

	// SmoothingAddOne adds one to matches and totals of orders two and up.
	SmoothingAddOne Smoothing = "add-one"
)

// ParseSmoothing converts a configuration string to a Smoothing.
func ParseSmoothing(s string) (Smoothing, error) {
	switch Smoothing(strings.ToLower(strings.TrimSpace(s))) {
	case "", SmoothingEpsilon:
		return SmoothingEpsilon, nil
	case SmoothingNone:
		return SmoothingNone, nil
	case SmoothingAddOne, "addone", "laplace":
		return SmoothingAddOne, nil
	default:
		return "", errortypes.ValidationError(fmt.Errorf("unknown smoothing %q", s), "invalid evaluation config")
	}
}

// Config holds the BLEU settings. Zero values select the defaults.
type Config struct {
	MaxOrder  int
	Smoothing Smoothing
	Epsilon   float64
}

// Evaluator computes BLEU scores. It is safe for concurrent use.
type Evaluator struct {
	maxOrder  int
	smoothing Smoothing
	epsilon   float64
	metrics   *telemetry.MetricsCollector
}

// New creates an Evaluator. metrics may be nil.
func New(config *Config, metrics *telemetry.MetricsCollector) *Evaluator {
	if config == nil {
		config = &Config{}
	}
	e := &Evaluator{
		maxOrder:  config.MaxOrder,
		smoothing: config.Smoothing,
		epsilon:   config.Epsilon,
		metrics:   metrics,
	}
	if e.maxOrder <= 0 {
		e.maxOrder = DefaultMaxOrder
	}
	if e.smoothing == "" {
		e.smoothing = SmoothingEpsilon
	}
	if e.epsilon <= 0 {
		e.epsilon = DefaultEpsilon
	}
	if e.metrics == nil {
		e.metrics = telemetry.NewMetricsCollector()
	}
	return e
}

// Score compares one candidate with one reference. The result is in [0,1].
func (e *Evaluator) Score(reference, candidate string) float64 {
	return e.ScoreMulti([]string{reference}, candidate)
}

// ScoreMulti compares a candidate against several references of the same document.
func (e *Evaluator) ScoreMulti(references []string, candidate string) float64 {
	start := time.Now()
	defer func() {
		e.metrics.RecordTimer(telemetry.MetricScoreTime, time.Since(start))
		e.metrics.IncrementCounter(telemetry.MetricPairsScored, 1)
	}()

	s := newStats(e.maxOrder)
	s.add(tokenizeAll(references), preprocess.Tokenize(candidate))
	return s.bleu(e.smoothing, e.epsilon)
}

// ScoreAll scores candidate i against reference i.
func (e *Evaluator) ScoreAll(references, candidates []string) ([]float64, error) {
	if len(references) != len(candidates) {
		return nil, errortypes.LengthMismatchError(len(references), len(candidates))
	}
	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = e.Score(references[i], candidates[i])
	}
	return scores, nil
}

// CorpusScore pools n-gram counts and lengths over all pairs before
// combining them, rather than averaging sentence scores.
func (e *Evaluator) CorpusScore(references, candidates []string) (float64, error) {
	if len(references) != len(candidates) {
		return 0, errortypes.LengthMismatchError(len(references), len(candidates))
	}
	s := newStats(e.maxOrder)
	for i := range candidates {
		s.add([][]string{preprocess.Tokenize(references[i])}, preprocess.Tokenize(candidates[i]))
	}
	e.metrics.IncrementCounter(telemetry.MetricPairsScored, int64(len(candidates)))
	return s.bleu(e.smoothing, e.epsilon), nil
}

// MaxOrder returns the longest n-gram compared.
func (e *Evaluator) MaxOrder() int {
	return e.maxOrder
}

// Smoothing returns the smoothing in use.
func (e *Evaluator) Smoothing() Smoothing {
	return e.smoothing
}

type stats struct {
	matches []int
	totals  []int
	candLen int
	refLen  int
}

func newStats(maxOrder int) *stats {
	return &stats{matches: make([]int, maxOrder), totals: make([]int, maxOrder)}
}

func (s *stats) add(references [][]string, candidate []string) {
	s.candLen += len(candidate)
	s.refLen += closestLength(references, len(candidate))

	for n := 1; n <= len(s.matches); n++ {
		counts := ngrams(candidate, n)
		maxRef := map[string]int{}
		for _, ref := range references {
			for gram, c := range ngrams(ref, n) {
				if c > maxRef[gram] {
					maxRef[gram] = c
				}
			}
		}
		for gram, c := range counts {
			s.matches[n-1] += min(c, maxRef[gram])
			s.totals[n-1] += c
		}
	}
}

func (s *stats) bleu(smoothing Smoothing, epsilon float64) float64 {
	if s.candLen == 0 || s.matches[0] == 0 {
		return 0
	}

	weight := 1 / float64(len(s.matches))
	var logSum float64
	for i := range s.matches {
		num, den := float64(s.matches[i]), float64(s.totals[i])
		switch {
		case smoothing == SmoothingAddOne && i > 0:
			num, den = num+1, den+1
		case s.matches[i] == 0 && smoothing == SmoothingEpsilon:
			num, den = epsilon, math.Max(1, den)
		case s.matches[i] == 0:
			return 0
		}
		logSum += weight * math.Log(num/den)
	}

	bp := 1.0
	if s.candLen < s.refLen {
		bp = math.Exp(1 - float64(s.refLen)/float64(s.candLen))
	}
	return math.Min(1, math.Max(0, bp*math.Exp(logSum)))
}

// closestLength returns the reference length nearest to the candidate
// length, preferring the shorter one on ties.
func closestLength(references [][]string, candLen int) int {
	best, bestDiff := 0, math.MaxInt
	for _, ref := range references {
		diff := len(ref) - candLen
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff || (diff == bestDiff && len(ref) < best) {
			best, bestDiff = len(ref), diff
		}
	}
	return best
}

func ngrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return counts
}

func tokenizeAll(texts []string) [][]string {
	out := make([][]string, len(texts))
	for i, t := range texts {
		out[i] = preprocess.Tokenize(t)
	}
	return out
}
