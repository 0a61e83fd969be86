package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"flightdelay/db"
	"flightdelay/ml"
	"flightdelay/monitoring"
)

const predictionCacheSize = 4096

// API owns the HTTP handlers and their collaborators. The model store is
// read lock-free per request; nothing here mutates it outside of training.
type API struct {
	store    *ml.Store
	log      *zap.Logger
	hub      *monitoring.Hub
	training TrainingConfig
	cache    *lru.Cache[cacheKey, cachedPrediction]
}

// Requests repeat the same categorical triples constantly, so predictions
// are memoized per artifact version.
type cacheKey struct {
	airline    string
	flightType string
	month      int
	version    int64
}

type cachedPrediction struct {
	label       int
	probability float64
}

func NewAPI(store *ml.Store, log *zap.Logger, hub *monitoring.Hub, training TrainingConfig) (*API, error) {
	cache, err := lru.New[cacheKey, cachedPrediction](predictionCacheSize)
	if err != nil {
		return nil, err
	}
	return &API{
		store:    store,
		log:      log,
		hub:      hub,
		training: training,
		cache:    cache,
	}, nil
}

// Register wires all routes onto the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("POST /api/predict", a.handlePredict)
	mux.HandleFunc("GET /api/model", a.handleModelInfo)
	mux.HandleFunc("POST /api/train", a.handleTrain)
	mux.HandleFunc("GET /api/training/log", a.handleTrainingLog)
	if a.hub != nil {
		mux.HandleFunc("GET /api/ws/monitor", a.hub.Serve)
	}
}

type flightPayload struct {
	Opera     string `json:"OPERA"`
	TipoVuelo string `json:"TIPOVUELO"`
	Mes       int    `json:"MES"`
}

type predictRequest struct {
	Flights []flightPayload `json:"flights"`
}

type predictResponse struct {
	Predict []int `json:"predict"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "OK",
		"model_loaded": a.store.Current() != nil,
	})
}

func (a *API) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	artifact := a.store.Current()
	if artifact == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"model_name":       artifact.ModelName,
		"trained_at":       artifact.TrainedAt,
		"data_points":      artifact.DataPoints,
		"selected_columns": artifact.Selected,
		"airlines":         artifact.Vocabulary.Airlines,
	})
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	artifact := a.store.Current()
	if artifact == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	// One invalid flight rejects the whole batch; the classifier never
	// sees partially valid input.
	if err := validateFlights(artifact, req.Flights); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	version := artifact.Version()
	labels := make([]int, len(req.Flights))
	rows := make([]db.PredictionRow, len(req.Flights))
	delayed := 0
	for i, flight := range req.Flights {
		key := cacheKey{airline: flight.Opera, flightType: flight.TipoVuelo, month: flight.Mes, version: version}
		cached, ok := a.cache.Get(key)
		if !ok {
			label, probability, err := artifact.Predict(ml.FlightRecord{
				Airline:    flight.Opera,
				FlightType: flight.TipoVuelo,
				Month:      flight.Mes,
			})
			if err != nil {
				// Validated input failing to encode means the artifact is
				// inconsistent, not the request.
				a.log.Error("prediction failed on validated input", zap.Error(err),
					zap.String("airline", flight.Opera))
				writeError(w, http.StatusInternalServerError, "prediction failed")
				return
			}
			cached = cachedPrediction{label: label, probability: probability}
			a.cache.Add(key, cached)
		}
		labels[i] = cached.label
		if cached.label == 1 {
			delayed++
		}
		rows[i] = db.PredictionRow{
			Airline:     flight.Opera,
			FlightType:  flight.TipoVuelo,
			Month:       flight.Mes,
			Label:       cached.label,
			Probability: cached.probability,
		}
	}

	writeJSON(w, http.StatusOK, predictResponse{Predict: labels})

	if db.Ready() {
		if err := db.SavePredictions(rows); err != nil {
			a.log.Warn("failed to persist predictions", zap.Error(err))
		}
	}
	if a.hub != nil {
		a.hub.Broadcast(monitoring.Event{
			Type:      "prediction",
			Timestamp: time.Now().UTC(),
			Flights:   len(req.Flights),
			Delayed:   delayed,
			LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
		})
	}
}

func (a *API) handleTrainingLog(w http.ResponseWriter, r *http.Request) {
	if !db.Ready() {
		writeError(w, http.StatusServiceUnavailable, "database not available")
		return
	}
	logs, err := db.LoadTrainingLog()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load training log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": logs})
}

// validateFlights enforces the serving boundary: known operator, recognized
// flight type, valid month. The operator set is the training vocabulary.
func validateFlights(artifact *ml.Artifact, flights []flightPayload) error {
	if len(flights) == 0 {
		return fmt.Errorf("flights is required")
	}
	for i, flight := range flights {
		if flight.Opera == "" {
			return fmt.Errorf("flight %d: OPERA is required", i)
		}
		if !artifact.Vocabulary.KnowsAirline(flight.Opera) {
			return fmt.Errorf("flight %d: unknown operator %q", i, flight.Opera)
		}
		if flight.TipoVuelo != ml.FlightTypeNational && flight.TipoVuelo != ml.FlightTypeInternational {
			return fmt.Errorf("flight %d: TIPOVUELO must be N or I", i)
		}
		if flight.Mes < 1 || flight.Mes > 12 {
			return fmt.Errorf("flight %d: MES must be between 1 and 12", i)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
