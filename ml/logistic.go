package ml

import (
	"errors"
	"math"
	"math/rand"
)

// ErrDegenerateTraining is returned when the training labels contain a
// single class. Fitting would produce a one-sided classifier, so the run
// fails instead.
var ErrDegenerateTraining = errors.New("training labels contain a single class")

// TrainingOptions control the solver. Seed fixes the shuffle order, so a
// fit with identical data and options is bit-for-bit reproducible.
type TrainingOptions struct {
	Epochs       int
	LearningRate float64
	Seed         int64
	Balanced     bool
}

func DefaultTrainingOptions() TrainingOptions {
	return TrainingOptions{
		Epochs:       300,
		LearningRate: 0.1,
		Seed:         42,
		Balanced:     true,
	}
}

// LogisticRegression is a binary linear classifier fit with stochastic
// gradient descent. With Balanced enabled, samples are weighted by inverse
// class frequency (n / (2 * n_class)) so the minority delayed class is not
// drowned out by the on-time majority.
type LogisticRegression struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

func (lr *LogisticRegression) Train(features [][]float64, labels []int, opts TrainingOptions) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	if width == 0 {
		return errors.New("feature vectors are empty")
	}
	for _, row := range features {
		if len(row) != width {
			return errors.New("inconsistent feature vector width")
		}
	}
	var positives, negatives int
	for _, label := range labels {
		switch label {
		case 0:
			negatives++
		case 1:
			positives++
		default:
			return errors.New("labels must be 0 or 1")
		}
	}
	if positives == 0 || negatives == 0 {
		return ErrDegenerateTraining
	}
	if opts.Epochs <= 0 {
		opts.Epochs = DefaultTrainingOptions().Epochs
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultTrainingOptions().LearningRate
	}

	classWeight := [2]float64{1, 1}
	if opts.Balanced {
		total := float64(len(labels))
		classWeight[0] = total / (2 * float64(negatives))
		classWeight[1] = total / (2 * float64(positives))
	}

	weights := make([]float64, width)
	intercept := 0.0
	rnd := rand.New(rand.NewSource(opts.Seed))
	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rnd.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, idx := range order {
			row := features[idx]
			label := labels[idx]
			p := sigmoid(dot(weights, row) + intercept)
			grad := (p - float64(label)) * classWeight[label] * opts.LearningRate
			for j, value := range row {
				weights[j] -= grad * value
			}
			intercept -= grad
		}
	}

	lr.Weights = weights
	lr.Intercept = intercept
	return nil
}

// Predict returns the hard label and the delay probability for one
// projected feature vector.
func (lr *LogisticRegression) Predict(features []float64) (int, float64, error) {
	if len(lr.Weights) == 0 {
		return 0, 0, errors.New("model not trained")
	}
	if len(features) != len(lr.Weights) {
		return 0, 0, errors.New("feature vector width mismatch")
	}
	p := sigmoid(dot(lr.Weights, features) + lr.Intercept)
	if p >= 0.5 {
		return 1, p, nil
	}
	return 0, p, nil
}

func dot(weights, features []float64) float64 {
	sum := 0.0
	for i, w := range weights {
		sum += w * features[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	// Clamp to keep exp from overflowing on extreme margins.
	if z > 35 {
		return 1
	}
	if z < -35 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
