package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        airline VARCHAR(50) NOT NULL,
        flight_type VARCHAR(1) NOT NULL,
        month INTEGER NOT NULL,
        predicted_label INTEGER NOT NULL,
        probability REAL NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY,
        model_name VARCHAR(50),
        accuracy REAL,
        precision REAL,
        recall REAL,
        trained_at DATETIME,
        data_points INTEGER
    );
    `

	_, err = database.Exec(query)
	return err
}

// Ready reports whether InitDB has run. Persistence is best-effort in the
// serving path and skipped entirely when the database is absent.
func Ready() bool {
	return database != nil
}

func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

type PredictionRow struct {
	Airline     string  `json:"airline"`
	FlightType  string  `json:"flight_type"`
	Month       int     `json:"month"`
	Label       int     `json:"predicted_label"`
	Probability float64 `json:"probability"`
}

// SavePredictions appends one row per served prediction.
func SavePredictions(rows []PredictionRow) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if len(rows) == 0 {
		return nil
	}

	stmt, err := database.Prepare(`
        INSERT INTO predictions (
            airline, flight_type, month, predicted_label, probability, created_at
        ) VALUES (?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, row := range rows {
		if _, err := stmt.Exec(row.Airline, row.FlightType, row.Month, row.Label, row.Probability, now); err != nil {
			return err
		}
	}
	return nil
}

type TrainingLog struct {
	ModelName  string    `json:"model_name"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	TrainedAt  time.Time `json:"trained_at"`
	DataPoints int       `json:"data_points"`
}

// LogTraining records the outcome of one training run.
func LogTraining(entry TrainingLog) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (model_name, accuracy, precision, recall, trained_at, data_points)
        VALUES (?, ?, ?, ?, ?, ?)
    `, entry.ModelName, entry.Accuracy, entry.Precision, entry.Recall, entry.TrainedAt, entry.DataPoints)
	return err
}

func LoadTrainingLog() ([]TrainingLog, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT model_name, accuracy, precision, recall, trained_at, data_points
        FROM training_log
        ORDER BY trained_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.ModelName, &log.Accuracy, &log.Precision, &log.Recall, &log.TrainedAt, &log.DataPoints); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
