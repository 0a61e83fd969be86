package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"flightdelay/dataset"
	"flightdelay/ml"
)

func main() {
	dataPath := flag.String("data", "", "historical flights CSV")
	modelPath := flag.String("model_path", "./models/delay.model", "model artifact output path")
	modelName := flag.String("model_name", "delay-logreg", "model name recorded in the artifact")
	epochs := flag.Int("epochs", 300, "training epochs")
	learningRate := flag.Float64("learning_rate", 0.1, "SGD learning rate")
	seed := flag.Int64("seed", 42, "random seed")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out test ratio")
	latin1 := flag.Bool("latin1", false, "decode the CSV as ISO-8859-1")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("data is required")
	}

	records, err := dataset.LoadFlights(*dataPath, dataset.Options{Latin1: *latin1})
	if err != nil {
		log.Fatalf("failed to load training data: %v", err)
	}
	log.Printf("loaded %d flight records", len(records))

	vocab := ml.BuildVocabulary(records)
	selector, err := ml.NewFeatureSelector(vocab, ml.TopFeatures())
	if err != nil {
		log.Fatalf("failed to build selector: %v", err)
	}

	features := make([][]float64, len(records))
	labels := make([]int, len(records))
	delayed := 0
	for i, rec := range records {
		full, err := vocab.Encode(rec)
		if err != nil {
			log.Fatalf("failed to encode record %d: %v", i, err)
		}
		features[i] = selector.Project(full)
		labels[i] = ml.DelayLabel(rec.ScheduledAt, rec.ActualAt)
		delayed += labels[i]
	}
	log.Printf("delayed %d of %d (%.1f%%)", delayed, len(labels), 100*float64(delayed)/float64(len(labels)))

	trainX, trainY, testX, testY := splitDataset(features, labels, *testRatio, *seed)

	opts := ml.TrainingOptions{
		Epochs:       *epochs,
		LearningRate: *learningRate,
		Seed:         *seed,
		Balanced:     true,
	}
	model := &ml.LogisticRegression{}
	if err := model.Train(trainX, trainY, opts); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	accuracy, precision, recall := evaluateModel(model, testX, testY)
	log.Printf("accuracy=%.3f precision=%.3f recall=%.3f", accuracy, precision, recall)

	artifact := &ml.Artifact{
		ModelName:  *modelName,
		TrainedAt:  time.Now().UTC(),
		DataPoints: len(records),
		Seed:       *seed,
		Vocabulary: *vocab,
		Selected:   selector.Columns(),
		Model:      *model,
	}
	if err := artifact.Init(); err != nil {
		log.Fatalf("invalid artifact: %v", err)
	}
	if err := artifact.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
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
