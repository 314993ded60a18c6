package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/fallback"
)

// predictionSchema is the contract for model output. Radar axes and counts are
// "number" so that 8.0 or 7.5 pass and get rounded during defaulting.
const predictionSchema = `{
  "type": "object",
  "required": ["graduate_achievements", "career_achievements", "skill_radar_data", "growth_path", "confidence_score"],
  "properties": {
    "graduate_achievements": {
      "type": "object",
      "required": ["gpa", "skills", "description"],
      "properties": {
        "gpa": {"type": "number", "minimum": 0, "maximum": 4.5},
        "skills": {"type": "array", "items": {"type": "string"}},
        "projects": {"type": "number", "minimum": 0},
        "certifications": {"type": "number", "minimum": 0},
        "description": {"type": "string", "minLength": 1}
      }
    },
    "career_achievements": {
      "type": "object",
      "required": ["position", "salary", "description"],
      "properties": {
        "position": {"type": "string", "minLength": 1},
        "salary": {"type": "string"},
        "experience": {"type": "string"},
        "companies": {"type": "array", "items": {"type": "string"}},
        "description": {"type": "string", "minLength": 1}
      }
    },
    "skill_radar_data": {
      "type": "object",
      "required": ["technical", "communication", "leadership", "creativity", "problem_solving"],
      "properties": {
        "technical": {"type": "number"},
        "communication": {"type": "number"},
        "leadership": {"type": "number"},
        "creativity": {"type": "number"},
        "problem_solving": {"type": "number"}
      }
    },
    "growth_path": {
      "type": "object",
      "required": ["year1", "year2", "year3", "year4"],
      "properties": {
        "year1": {"type": "string", "minLength": 1},
        "year2": {"type": "string", "minLength": 1},
        "year3": {"type": "string", "minLength": 1},
        "year4": {"type": "string", "minLength": 1}
      }
    },
    "confidence_score": {"type": "number"}
  }
}`

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError lists every violation found in a model response.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "prediction schema: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match domain.ErrSchemaInvalid.
func (e *SchemaError) Unwrap() error { return domain.ErrSchemaInvalid }

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadPredictionSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(predictionSchema))
	})
	return compiledSchema, schemaErr
}

// wirePrediction mirrors domain.Prediction with float counters.
type wirePrediction struct {
	GraduateAchievements struct {
		GPA            float64  `json:"gpa"`
		Skills         []string `json:"skills"`
		Projects       float64  `json:"projects"`
		Certifications float64  `json:"certifications"`
		Description    string   `json:"description"`
	} `json:"graduate_achievements"`
	CareerAchievements domain.CareerAchievements `json:"career_achievements"`
	SkillRadarData     struct {
		Technical      float64 `json:"technical"`
		Communication  float64 `json:"communication"`
		Leadership     float64 `json:"leadership"`
		Creativity     float64 `json:"creativity"`
		ProblemSolving float64 `json:"problem_solving"`
	} `json:"skill_radar_data"`
	GrowthPath      domain.GrowthPath `json:"growth_path"`
	ConfidenceScore float64           `json:"confidence_score"`
}

// PredictionDecoder turns raw model text into a validated prediction.
type PredictionDecoder struct {
	cleaner *ResponseCleaner
}

// NewPredictionDecoder creates a decoder.
func NewPredictionDecoder() *PredictionDecoder {
	return &PredictionDecoder{cleaner: NewResponseCleaner()}
}

// Decode cleans, validates and normalizes raw. Every failure wraps domain.ErrSchemaInvalid.
func (d *PredictionDecoder) Decode(raw string) (domain.Prediction, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Prediction{}, fmt.Errorf("op=ai.decode: empty response: %w", domain.ErrSchemaInvalid)
	}
	cleaned, err := d.cleaner.CleanAndValidateJSON(raw)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("op=ai.decode: %v: %w", err, domain.ErrSchemaInvalid)
	}

	schema, err := loadPredictionSchema()
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("op=ai.decode: load schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("op=ai.decode: %v: %w", err, domain.ErrSchemaInvalid)
	}
	if !result.Valid() {
		se := &SchemaError{}
		for _, re := range result.Errors() {
			se.Errors = append(se.Errors, FieldError{Field: re.Field(), Message: re.Description()})
		}
		return domain.Prediction{}, fmt.Errorf("op=ai.decode: %w", se)
	}

	var w wirePrediction
	if err := json.Unmarshal([]byte(cleaned), &w); err != nil {
		return domain.Prediction{}, fmt.Errorf("op=ai.decode: %v: %w", err, domain.ErrSchemaInvalid)
	}
	return normalize(w), nil
}

func roundInt(f float64) int { return int(math.Round(f)) }

// normalize applies the defaults: radar axes rounded and clamped to 1..10,
// counters rounded, nil lists replaced by empty ones. Confidence is kept as sent.
func normalize(w wirePrediction) domain.Prediction {
	skills := w.GraduateAchievements.Skills
	if skills == nil {
		skills = []string{}
	}
	career := w.CareerAchievements
	if career.Companies == nil {
		career.Companies = []string{}
	}
	return domain.Prediction{
		GraduateAchievements: domain.GraduateAchievements{
			GPA:            math.Round(w.GraduateAchievements.GPA*100) / 100,
			Skills:         skills,
			Projects:       roundInt(w.GraduateAchievements.Projects),
			Certifications: roundInt(w.GraduateAchievements.Certifications),
			Description:    w.GraduateAchievements.Description,
		},
		CareerAchievements: career,
		SkillRadarData: fallback.Radar(domain.SkillRadar{
			Technical:      roundInt(w.SkillRadarData.Technical),
			Communication:  roundInt(w.SkillRadarData.Communication),
			Leadership:     roundInt(w.SkillRadarData.Leadership),
			Creativity:     roundInt(w.SkillRadarData.Creativity),
			ProblemSolving: roundInt(w.SkillRadarData.ProblemSolving),
		}),
		GrowthPath:      w.GrowthPath,
		ConfidenceScore: w.ConfidenceScore,
	}
}
