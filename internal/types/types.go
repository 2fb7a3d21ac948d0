// Package types defines the HTTP request and response payloads.
package types

import (
	"github.com/virelia/pancrisk/internal/batch"
	"github.com/virelia/pancrisk/internal/explain"
	"github.com/virelia/pancrisk/internal/model"
)

// PredictRequest carries one blood panel. Absent readings fall back to
// population defaults, matching the web form's behavior.
type PredictRequest struct {
	WBC       *float64 `json:"wbc"`
	RBC       *float64 `json:"rbc"`
	PLT       *float64 `json:"plt"`
	HGB       *float64 `json:"hgb"`
	HCT       *float64 `json:"hct"`
	MPV       *float64 `json:"mpv"`
	PDW       *float64 `json:"pdw"`
	MONO      *float64 `json:"mono"`
	BasoAbs   *float64 `json:"baso_abs"`
	BasoPct   *float64 `json:"baso_pct"`
	Glucose   *float64 `json:"glucose"`
	ACT       *float64 `json:"act"`
	Bilirubin *float64 `json:"bilirubin"`

	Language   string `json:"language"`
	ClientType string `json:"client_type"`
}

// Values maps provided readings onto the canonical feature keys.
func (r *PredictRequest) Values() map[string]float64 {
	fields := map[string]*float64{
		"wbc": r.WBC, "rbc": r.RBC, "plt": r.PLT, "hgb": r.HGB,
		"hct": r.HCT, "mpv": r.MPV, "pdw": r.PDW, "mono": r.MONO,
		"baso_abs": r.BasoAbs, "baso_pct": r.BasoPct,
		"glucose": r.Glucose, "act": r.ACT, "bilirubin": r.Bilirubin,
	}
	values := make(map[string]float64, len(model.FeatureOrder))
	for _, key := range model.FeatureOrder {
		if v := fields[key]; v != nil {
			values[key] = *v
		} else {
			values[key] = model.FeatureDefaults[key]
		}
	}
	return values
}

// PredictResponse is the full analysis payload for one panel.
type PredictResponse struct {
	Prediction       int                        `json:"prediction"`
	Probability      float64                    `json:"probability"`
	RiskLevel        string                     `json:"risk_level"`
	PatientValues    map[string]float64         `json:"patient_values"`
	ShapValues       []explain.AttributionEntry `json:"shap_values"`
	Baseline         float64                    `json:"baseline"`
	Waterfall        *explain.WaterfallData     `json:"waterfall,omitempty"`
	Summary          *explain.Summary           `json:"summary,omitempty"`
	Clusters         []explain.FeatureCluster   `json:"clusters,omitempty"`
	Commentary       string                     `json:"ai_explanation"`
	CommentaryBase64 string                     `json:"ai_explanation_b64"`
	Metrics          map[string]float64         `json:"metrics"`
	ProcessingTime   string                     `json:"processing_time"`
	Timestamp        string                     `json:"timestamp"`
	Status           string                     `json:"status"`
}

// CommentaryRequest regenerates commentary for an existing analysis in a
// different audience or language, without rescoring.
type CommentaryRequest struct {
	Features      []float64          `json:"features"`
	PatientValues map[string]float64 `json:"patient_values"`
	Probability   float64            `json:"probability"`
	Prediction    *int               `json:"prediction"`
	Language      string             `json:"language"`
	ClientType    string             `json:"client_type"`
}

// CommentaryResponse carries the regenerated text.
type CommentaryResponse struct {
	Commentary       string `json:"ai_explanation"`
	CommentaryBase64 string `json:"ai_explanation_b64"`
	Language         string `json:"language"`
	ClientType       string `json:"client_type"`
	Status           string `json:"status"`
}

// BatchResponse wraps a batch run.
type BatchResponse struct {
	*batch.Result
	Status string `json:"status"`
}

// HealthResponse reports liveness and model metadata.
type HealthResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	ModelMetrics  map[string]float64     `json:"model_metrics"`
	Cache         map[string]interface{} `json:"cache,omitempty"`
	RateLimit     map[string]interface{} `json:"rate_limit,omitempty"`
	Database      map[string]interface{} `json:"database,omitempty"`
}
