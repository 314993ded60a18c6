// Package wizard models the onboarding flow as an immutable state and a pure reducer.
package wizard

import (
	"strings"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// Step identifies one wizard screen. Values are 1-based.
type Step int

const (
	StepWelcome Step = iota + 1
	StepInfo
	StepCareer
	StepAssessment
	StepLearningGoals
	StepProcessing
	StepResults
)

// TotalSteps is the number of wizard screens.
const TotalSteps = int(StepResults)

type stepSpec struct {
	name  string
	valid func(StepData) bool
}

func always(StepData) bool { return true }

// steps is indexed by Step-1.
var steps = [TotalSteps]stepSpec{
	{name: "welcome", valid: always},
	{name: "info", valid: func(d StepData) bool {
		return len(d.Photo) > 0 && strings.TrimSpace(d.Name) != "" && d.Gender != ""
	}},
	{name: "career", valid: func(d StepData) bool {
		return strings.TrimSpace(d.IdealCareer) != "" || strings.TrimSpace(d.CareerCustom) != ""
	}},
	{name: "assessment", valid: func(d StepData) bool { return len(d.SkillsAssessment) == len(Questions) }},
	{name: "learning_goals", valid: func(d StepData) bool {
		return d.LearningGoals != nil && strings.TrimSpace(d.LearningGoals.FourYearPlan) != ""
	}},
	{name: "processing", valid: always},
	{name: "results", valid: always},
}

// Valid reports whether s is within 1..TotalSteps.
func (s Step) Valid() bool { return s >= StepWelcome && s <= StepResults }

func (s Step) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return steps[s-1].name
}

// StepData is everything the wizard has collected so far.
type StepData struct {
	Photo            []byte
	PhotoContentType string
	Name             string
	StudentID        string
	Phone            string
	Gender           domain.Gender
	IdealCareer      string
	CareerCustom     string
	TechInterests    []string
	SkillsAssessment map[string]domain.SkillAnswer
	LearningGoals    *domain.LearningGoals
}

func (d StepData) clone() StepData {
	out := d
	if d.Photo != nil {
		out.Photo = append([]byte(nil), d.Photo...)
	}
	if d.TechInterests != nil {
		out.TechInterests = append([]string(nil), d.TechInterests...)
	}
	if d.SkillsAssessment != nil {
		out.SkillsAssessment = make(map[string]domain.SkillAnswer, len(d.SkillsAssessment))
		for k, v := range d.SkillsAssessment {
			out.SkillsAssessment[k] = v
		}
	}
	if d.LearningGoals != nil {
		lg := *d.LearningGoals
		out.LearningGoals = &lg
	}
	return out
}

// State is the complete wizard state. Treat it as a value; Reduce never mutates its input.
type State struct {
	Current    Step
	Data       StepData
	Processing bool
}

// Initial returns the state of a fresh wizard.
func Initial() State { return State{Current: StepWelcome} }

// IsStepValid reports whether data satisfies the requirements of step.
// Unknown steps are never valid.
func IsStepValid(d StepData, step Step) bool {
	if !step.Valid() {
		return false
	}
	return steps[step-1].valid(d)
}

// CanAdvance reports whether the current step is complete.
func (s State) CanAdvance() bool { return IsStepValid(s.Data, s.Current) }
