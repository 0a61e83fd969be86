package ml

import "errors"

// TopFeatures is the fixed serving-time feature subset, chosen once offline
// by a feature-importance study. The list travels inside the model artifact:
// a retrained model may select a different ten, so the coefficients and the
// column identities are replaced together, never independently.
func TopFeatures() []string {
	return []string{
		"OPERA_Latin American Wings",
		"MES_7",
		"MES_10",
		"OPERA_Grupo LATAM",
		"MES_12",
		"TIPOVUELO_I",
		"MES_4",
		"MES_11",
		"OPERA_Sky Airline",
		"OPERA_Copa Air",
	}
}

// FeatureSelector projects a full encoded vector onto a fixed list of
// selected columns. Column positions are resolved against the vocabulary
// once, up front, so projection is a plain index walk per record.
type FeatureSelector struct {
	columns []string
	indices []int
}

// NewFeatureSelector resolves the selected columns against the vocabulary.
// A selected column missing from the vocabulary projects to 0 rather than
// failing: the column set is frozen with the artifact, not with the data.
func NewFeatureSelector(vocab *Vocabulary, columns []string) (*FeatureSelector, error) {
	if vocab == nil || vocab.index == nil {
		return nil, errors.New("vocabulary not initialized")
	}
	if len(columns) == 0 {
		return nil, errors.New("no columns selected")
	}
	indices := make([]int, len(columns))
	for i, column := range columns {
		idx, ok := vocab.index[column]
		if !ok {
			idx = -1
		}
		indices[i] = idx
	}
	return &FeatureSelector{
		columns: append([]string(nil), columns...),
		indices: indices,
	}, nil
}

func (s *FeatureSelector) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Project returns the selected subset of the full vector, always in the
// fixed column order and always len(Columns()) long.
func (s *FeatureSelector) Project(full []float64) []float64 {
	projected := make([]float64, len(s.indices))
	for i, idx := range s.indices {
		if idx >= 0 && idx < len(full) {
			projected[i] = full[idx]
		}
	}
	return projected
}
