package http

import (
	"errors"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"flightdelay/dataset"
	"flightdelay/db"
	"flightdelay/ml"
)

// TrainingConfig drives retraining from the configured historical CSV.
type TrainingConfig struct {
	DataPath     string  `yaml:"data_path"`
	ModelPath    string  `yaml:"model_path"`
	ModelName    string  `yaml:"model_name"`
	Epochs       int     `yaml:"epochs"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         int64   `yaml:"seed"`
	TestRatio    float64 `yaml:"test_ratio"`
	Latin1       bool    `yaml:"latin1"`
}

type trainingResult struct {
	Artifact  *ml.Artifact
	Accuracy  float64
	Precision float64
	Recall    float64
}

func (a *API) handleTrain(w http.ResponseWriter, r *http.Request) {
	if a.training.DataPath == "" || a.training.ModelPath == "" {
		writeError(w, http.StatusServiceUnavailable, "training is not configured")
		return
	}

	result, err := trainModel(a.training)
	if err != nil {
		if errors.Is(err, ml.ErrDegenerateTraining) {
			writeError(w, http.StatusUnprocessableEntity, "training data contains a single class")
			return
		}
		a.log.Error("training failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "training failed")
		return
	}

	// The new artifact replaces the old one atomically; in-flight requests
	// finish on whichever model they started with.
	a.store.Swap(result.Artifact)
	a.log.Info("model retrained",
		zap.Int("data_points", result.Artifact.DataPoints),
		zap.Float64("accuracy", result.Accuracy),
		zap.Float64("recall", result.Recall))

	if db.Ready() {
		if err := db.LogTraining(db.TrainingLog{
			ModelName:  result.Artifact.ModelName,
			Accuracy:   result.Accuracy,
			Precision:  result.Precision,
			Recall:     result.Recall,
			TrainedAt:  result.Artifact.TrainedAt,
			DataPoints: result.Artifact.DataPoints,
		}); err != nil {
			a.log.Warn("failed to log training run", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trained_at":  result.Artifact.TrainedAt,
		"data_points": result.Artifact.DataPoints,
		"accuracy":    result.Accuracy,
		"precision":   result.Precision,
		"recall":      result.Recall,
	})
}

// trainModel runs the full pipeline: load, encode, project, split, fit,
// evaluate and persist. The saved artifact carries the vocabulary and the
// selected columns alongside the coefficients.
func trainModel(config TrainingConfig) (*trainingResult, error) {
	if config.DataPath == "" {
		return nil, errors.New("data path is required")
	}
	if config.ModelPath == "" {
		return nil, errors.New("model path is required")
	}

	records, err := dataset.LoadFlights(config.DataPath, dataset.Options{Latin1: config.Latin1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no training records")
	}

	vocab := ml.BuildVocabulary(records)
	selector, err := ml.NewFeatureSelector(vocab, ml.TopFeatures())
	if err != nil {
		return nil, err
	}

	features := make([][]float64, len(records))
	labels := make([]int, len(records))
	for i, rec := range records {
		full, err := vocab.Encode(rec)
		if err != nil {
			return nil, err
		}
		features[i] = selector.Project(full)
		labels[i] = ml.DelayLabel(rec.ScheduledAt, rec.ActualAt)
	}

	opts := ml.DefaultTrainingOptions()
	if config.Epochs > 0 {
		opts.Epochs = config.Epochs
	}
	if config.LearningRate > 0 {
		opts.LearningRate = config.LearningRate
	}
	if config.Seed != 0 {
		opts.Seed = config.Seed
	}

	trainX, trainY, testX, testY := splitDataset(features, labels, config.TestRatio, opts.Seed)

	model := &ml.LogisticRegression{}
	if err := model.Train(trainX, trainY, opts); err != nil {
		return nil, err
	}

	accuracy, precision, recall := evaluateModel(model, testX, testY)

	name := config.ModelName
	if name == "" {
		name = "delay-logreg"
	}
	artifact := &ml.Artifact{
		ModelName:  name,
		TrainedAt:  time.Now().UTC(),
		DataPoints: len(records),
		Seed:       opts.Seed,
		Vocabulary: *vocab,
		Selected:   selector.Columns(),
		Model:      *model,
	}
	if err := artifact.Init(); err != nil {
		return nil, err
	}
	if err := artifact.Save(config.ModelPath); err != nil {
		return nil, err
	}

	return &trainingResult{
		Artifact:  artifact,
		Accuracy:  accuracy,
		Precision: precision,
		Recall:    recall,
	}, nil
}

func splitDataset(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

// evaluateModel reports accuracy plus precision and recall on the delayed
// class, which is the one an unweighted fit collapses on.
func evaluateModel(model *ml.LogisticRegression, testX [][]float64, testY []int) (accuracy, precision, recall float64) {
	if len(testX) == 0 {
		return 0, 0, 0
	}

	var correct int
	var truePositive int
	var predictedPositive int
	var actualPositive int

	for i, feature := range testX {
		label, _, err := model.Predict(feature)
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
		if testY[i] == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}

	accuracy = float64(correct) / float64(len(testX))
	if predictedPositive > 0 {
		precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		recall = float64(truePositive) / float64(actualPositive)
	}
	return accuracy, precision, recall
}
