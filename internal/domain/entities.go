package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrPersistence       = errors.New("persistence failure")
	ErrInternal          = errors.New("internal error")
)

// DefaultCareer is used wherever a profile carries no career choice.
const DefaultCareer = "软件开发工程师"

// ProcessingStatus is the lifecycle state of a prediction record.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// CareerPath enumerates the post-graduation intentions offered by the wizard.
type CareerPath string

const (
	CareerPathBigCompany   CareerPath = "big_company"
	CareerPathGraduate     CareerPath = "graduate"
	CareerPathStartup      CareerPath = "startup"
	CareerPathCivilService CareerPath = "civil_service"
	CareerPathCareerChange CareerPath = "career_change"
)

// Valid reports whether p is one of the known career paths.
func (p CareerPath) Valid() bool {
	switch p {
	case CareerPathBigCompany, CareerPathGraduate, CareerPathStartup, CareerPathCivilService, CareerPathCareerChange:
		return true
	}
	return false
}

// Gender as collected on the info step.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// SkillAnswer is one answered assessment question.
type SkillAnswer struct {
	Value string `json:"value"`
	Score int    `json:"score"`
}

// LearningGoals captures the student's four-year intent.
type LearningGoals struct {
	FourYearPlan string     `json:"fourYearPlan,omitempty"`
	CareerPath   CareerPath `json:"careerPath,omitempty"`
}

// Profile is the model-facing view of a student (the "profileData" payload).
// ProgrammingSkills and LogicalThinking are derived from the assessment on the 1..9 scale.
type Profile struct {
	Name              string         `json:"name"`
	IdealCareer       string         `json:"idealCareer,omitempty"`
	CareerCustom      string         `json:"careerCustom,omitempty"`
	TechInterests     []string       `json:"techInterests,omitempty"`
	ProgrammingSkills int            `json:"programmingSkills"`
	LogicalThinking   int            `json:"logicalThinking"`
	PersonalityType   string         `json:"personalityType,omitempty"`
	LearningGoals     *LearningGoals `json:"learningGoals,omitempty"`
}

// CareerTitle returns the chosen career, the custom one, or DefaultCareer.
func (p Profile) CareerTitle() string {
	if c := strings.TrimSpace(p.IdealCareer); c != "" {
		return c
	}
	if c := strings.TrimSpace(p.CareerCustom); c != "" {
		return c
	}
	return DefaultCareer
}

// GraduateAchievements is the four-year academic projection.
type GraduateAchievements struct {
	GPA            float64  `json:"gpa"`
	Skills         []string `json:"skills"`
	Projects       int      `json:"projects"`
	Certifications int      `json:"certifications"`
	Description    string   `json:"description"`
}

// CareerAchievements is the ten-year career projection.
type CareerAchievements struct {
	Position    string   `json:"position"`
	Salary      string   `json:"salary"`
	Experience  string   `json:"experience"`
	Companies   []string `json:"companies"`
	Description string   `json:"description"`
}

// SkillRadar holds five axes scored 1..10.
type SkillRadar struct {
	Technical      int `json:"technical"`
	Communication  int `json:"communication"`
	Leadership     int `json:"leadership"`
	Creativity     int `json:"creativity"`
	ProblemSolving int `json:"problem_solving"`
}

// GrowthPath is one narrative per academic year.
type GrowthPath struct {
	Year1 string `json:"year1"`
	Year2 string `json:"year2"`
	Year3 string `json:"year3"`
	Year4 string `json:"year4"`
}

// Prediction is the full model (or fallback) output.
type Prediction struct {
	GraduateAchievements GraduateAchievements `json:"graduate_achievements"`
	CareerAchievements   CareerAchievements   `json:"career_achievements"`
	SkillRadarData       SkillRadar           `json:"skill_radar_data"`
	GrowthPath           GrowthPath           `json:"growth_path"`
	ConfidenceScore      float64              `json:"confidence_score"`
}

// PredictionRecord is the persisted row, one per user.
// Invariant: Status == StatusCompleted implies every payload pointer is non-nil.
type PredictionRecord struct {
	ID                   string                `json:"id,omitempty"`
	UserID               string                `json:"user_id"`
	Status               ProcessingStatus      `json:"processing_status"`
	GraduateImageURL     *string               `json:"graduate_image_url"`
	CareerImageURL       *string               `json:"career_image_url"`
	GraduateAchievements *GraduateAchievements `json:"graduate_achievements"`
	CareerAchievements   *CareerAchievements   `json:"career_achievements"`
	SkillRadarData       *SkillRadar           `json:"skill_radar_data"`
	GrowthPath           *GrowthPath           `json:"growth_path"`
	ConfidenceScore      *float64              `json:"confidence_score"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`

	// WriteImages makes an upsert store both image URLs as given, nil included.
	// Otherwise the stored URLs are kept.
	WriteImages bool `json:"-"`
}

// StatusRecord builds a status-only record. Upserting it changes only the
// status; the stored payload and image URLs are kept.
func StatusRecord(userID string, status ProcessingStatus) PredictionRecord {
	return PredictionRecord{UserID: userID, Status: status}
}

// CompletedRecord builds the terminal record carrying the full prediction and
// both image URLs. A nil URL clears the stored one.
func CompletedRecord(userID string, p Prediction, graduateImageURL, careerImageURL *string) PredictionRecord {
	rec := LocalRecord(userID, p)
	rec.GraduateImageURL = graduateImageURL
	rec.CareerImageURL = careerImageURL
	rec.WriteImages = true
	return rec
}

// LocalRecord builds a completed record without image URLs; upserting it
// leaves any stored URLs in place.
func LocalRecord(userID string, p Prediction) PredictionRecord {
	conf := p.ConfidenceScore
	return PredictionRecord{
		UserID:               userID,
		Status:               StatusCompleted,
		GraduateAchievements: &p.GraduateAchievements,
		CareerAchievements:   &p.CareerAchievements,
		SkillRadarData:       &p.SkillRadarData,
		GrowthPath:           &p.GrowthPath,
		ConfidenceScore:      &conf,
	}
}

// Merge applies an upsert of in onto the stored record r: the status always
// changes, nil payload fields keep the stored value and image URLs change only
// when in.WriteImages is set. Timestamps and ID are taken from r.
func (r PredictionRecord) Merge(in PredictionRecord) PredictionRecord {
	out := r
	out.UserID = in.UserID
	out.Status = in.Status
	if in.WriteImages {
		out.GraduateImageURL = in.GraduateImageURL
		out.CareerImageURL = in.CareerImageURL
	}
	if in.GraduateAchievements != nil {
		out.GraduateAchievements = in.GraduateAchievements
	}
	if in.CareerAchievements != nil {
		out.CareerAchievements = in.CareerAchievements
	}
	if in.SkillRadarData != nil {
		out.SkillRadarData = in.SkillRadarData
	}
	if in.GrowthPath != nil {
		out.GrowthPath = in.GrowthPath
	}
	if in.ConfidenceScore != nil {
		out.ConfidenceScore = in.ConfidenceScore
	}
	out.WriteImages = false
	return out
}

// HasPayload reports whether every prediction field is populated.
func (r PredictionRecord) HasPayload() bool {
	return r.GraduateAchievements != nil && r.CareerAchievements != nil &&
		r.SkillRadarData != nil && r.GrowthPath != nil && r.ConfidenceScore != nil
}

// StudentProfile is the persisted wizard submission.
type StudentProfile struct {
	ID               string                 `json:"id,omitempty"`
	UserID           string                 `json:"user_id"`
	Name             string                 `json:"name"`
	StudentID        string                 `json:"student_id,omitempty"`
	Phone            string                 `json:"phone,omitempty"`
	Gender           Gender                 `json:"gender,omitempty"`
	IdealCareer      string                 `json:"ideal_career,omitempty"`
	CareerCustom     string                 `json:"career_custom,omitempty"`
	PersonalityType  string                 `json:"personality_type,omitempty"`
	LearningGoals    *LearningGoals         `json:"learning_goals,omitempty"`
	Interests        []string               `json:"interests,omitempty"`
	SkillsAssessment map[string]SkillAnswer `json:"skills_assessment,omitempty"`
	PhotoURL         *string                `json:"photo_url"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// PredictionEvent is published after a prediction reaches a terminal state.
type PredictionEvent struct {
	UserID          string           `json:"user_id"`
	Status          ProcessingStatus `json:"processing_status"`
	Path            string           `json:"path"`
	ConfidenceScore float64          `json:"confidence_score"`
	HasImages       bool             `json:"has_images"`
	RequestID       string           `json:"request_id,omitempty"`
	OccurredAt      time.Time        `json:"occurred_at"`
}

// Context is an alias to allow decoupling from std context in domain.
type Context = context.Context
