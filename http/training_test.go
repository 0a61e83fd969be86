package http

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flightdelay/ml"
)

func writeTrainingCSV(t *testing.T, delayed, onTime int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Fecha-I,Fecha-O,OPERA,TIPOVUELO,MES\n")
	for i := 0; i < delayed; i++ {
		fmt.Fprintf(&b, "2017-07-%02d 10:00:00,2017-07-%02d 10:40:00,Grupo LATAM,N,7\n", i%28+1, i%28+1)
	}
	for i := 0; i < onTime; i++ {
		fmt.Fprintf(&b, "2017-04-%02d 08:00:00,2017-04-%02d 08:00:00,Sky Airline,I,4\n", i%28+1, i%28+1)
	}

	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestTrainModel(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "models", "delay.model")
	config := TrainingConfig{
		DataPath:  writeTrainingCSV(t, 30, 30),
		ModelPath: modelPath,
		ModelName: "delay-logreg",
		Epochs:    200,
		Seed:      7,
		TestRatio: 0.1,
	}

	result, err := trainModel(config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Artifact.DataPoints != 60 {
		t.Fatalf("expected 60 data points, got %d", result.Artifact.DataPoints)
	}
	if result.Accuracy < 0 || result.Accuracy > 1 {
		t.Fatalf("accuracy out of range: %f", result.Accuracy)
	}

	// The artifact on disk must reproduce the in-memory model.
	loaded, err := ml.LoadArtifact(modelPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, _, err := loaded.Predict(ml.FlightRecord{Airline: "Grupo LATAM", FlightType: "N", Month: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected the all-delayed operator to predict 1, got %d", label)
	}
	label, _, err = loaded.Predict(ml.FlightRecord{Airline: "Sky Airline", FlightType: "I", Month: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected the all-on-time operator to predict 0, got %d", label)
	}
}

func TestTrainModelSingleClassFails(t *testing.T) {
	config := TrainingConfig{
		DataPath:  writeTrainingCSV(t, 0, 40),
		ModelPath: filepath.Join(t.TempDir(), "delay.model"),
		Seed:      7,
	}
	if _, err := trainModel(config); !errors.Is(err, ml.ErrDegenerateTraining) {
		t.Fatalf("expected ErrDegenerateTraining, got %v", err)
	}
}

func TestTrainModelRequiresPaths(t *testing.T) {
	if _, err := trainModel(TrainingConfig{}); err == nil {
		t.Fatal("expected error for missing data path")
	}
	if _, err := trainModel(TrainingConfig{DataPath: "somewhere.csv"}); err == nil {
		t.Fatal("expected error for missing model path")
	}
}

func TestSplitDatasetDeterministic(t *testing.T) {
	features := make([][]float64, 20)
	labels := make([]int, 20)
	for i := range features {
		features[i] = []float64{float64(i)}
		labels[i] = i % 2
	}

	trainA, _, testA, _ := splitDataset(features, labels, 0.2, 7)
	trainB, _, testB, _ := splitDataset(features, labels, 0.2, 7)

	if len(trainA) != 16 || len(testA) != 4 {
		t.Fatalf("unexpected split sizes: %d/%d", len(trainA), len(testA))
	}
	for i := range trainA {
		if trainA[i][0] != trainB[i][0] {
			t.Fatal("same seed produced different splits")
		}
	}
	for i := range testA {
		if testA[i][0] != testB[i][0] {
			t.Fatal("same seed produced different splits")
		}
	}
}
