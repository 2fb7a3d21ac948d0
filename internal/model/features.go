package model

// The thirteen blood-panel features in canonical order. Every feature
// vector in the system uses this order.
var FeatureOrder = []string{
	"wbc", "rbc", "plt", "hgb", "hct", "mpv", "pdw",
	"mono", "baso_abs", "baso_pct", "glucose", "act", "bilirubin",
}

// Population defaults used when a reading is absent. These double as the
// reference point for the deterministic attribution engine.
var FeatureDefaults = map[string]float64{
	"wbc":       5.8,
	"rbc":       4.0,
	"plt":       184.0,
	"hgb":       127.0,
	"hct":       40.0,
	"mpv":       11.0,
	"pdw":       16.0,
	"mono":      0.42,
	"baso_abs":  0.01,
	"baso_pct":  0.2,
	"glucose":   6.3,
	"act":       26.0,
	"bilirubin": 17.0,
}

// Range is a conservative reference interval for payload validation.
type Range struct {
	Min float64
	Max float64
}

// ReferenceRanges bounds accepted readings per feature.
var ReferenceRanges = map[string]Range{
	"wbc":       {4.0, 11.0},
	"rbc":       {4.0, 5.5},
	"plt":       {150, 450},
	"hgb":       {110, 170},
	"hct":       {32, 52},
	"mpv":       {7.0, 13.0},
	"pdw":       {9.0, 20.0},
	"mono":      {0.1, 1.2},
	"baso_abs":  {0.0, 0.2},
	"baso_pct":  {0.0, 3.0},
	"glucose":   {3.5, 7.5},
	"act":       {10, 45},
	"bilirubin": {3, 25},
}

// FeatureLabels maps uppercase feature codes to display names per language.
var FeatureLabels = map[string]map[string]string{
	"en": {
		"WBC":       "White blood cell count",
		"RBC":       "Red blood cell count",
		"PLT":       "Platelets",
		"HGB":       "Hemoglobin",
		"HCT":       "Hematocrit",
		"MPV":       "Mean platelet volume",
		"PDW":       "Platelet distribution width",
		"MONO":      "Monocytes fraction",
		"BASO_ABS":  "Basophils (absolute)",
		"BASO_PCT":  "Basophils (%)",
		"GLUCOSE":   "Fasting glucose",
		"ACT":       "Activated clotting time",
		"BILIRUBIN": "Total bilirubin",
	},
	"ru": {
		"WBC":       "Количество белых кровяных клеток",
		"RBC":       "Количество красных кровяных клеток",
		"PLT":       "Тромбоциты",
		"HGB":       "Гемоглобин",
		"HCT":       "Гематокрит",
		"MPV":       "Средний объем тромбоцита",
		"PDW":       "Ширина распределения тромбоцитов",
		"MONO":      "Фракция моноцитов",
		"BASO_ABS":  "Базофилы (абсолютное)",
		"BASO_PCT":  "Базофилы (%)",
		"GLUCOSE":   "Глюкоза натощак",
		"ACT":       "Время активации свертывания",
		"BILIRUBIN": "Общий билирубин",
	},
}

// RebuildVector reconstructs a feature vector in canonical order from a
// possibly-partial map of patient values, filling gaps with defaults.
func RebuildVector(values map[string]float64) []float64 {
	vector := make([]float64, 0, len(FeatureOrder))
	for _, key := range FeatureOrder {
		if v, ok := values[key]; ok {
			vector = append(vector, v)
			continue
		}
		vector = append(vector, FeatureDefaults[key])
	}
	return vector
}
