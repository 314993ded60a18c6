// Package profile turns collected wizard data into the model-facing profile.
package profile

import (
	"strings"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/wizard"
)

// Personality labels.
const (
	PersonalityPassionDriven = "热情驱动型"
	PersonalityEnvSupported  = "环境支持型"
	PersonalityPassive       = "被动接受型"
	PersonalityPractical     = "实用导向型"
	PersonalityExploring     = "探索型"
)

const (
	neutralScore = 5
	missingScore = 1
)

type assessment map[string]domain.SkillAnswer

// score returns the answer's score; a zero or negative score counts as unanswered.
func (a assessment) score(id string, def int) int {
	if ans, ok := a[id]; ok && ans.Score > 0 {
		return ans.Score
	}
	return def
}

// ProgrammingSkills averages coding and AI experience, rounding half up.
// A missing answer counts as 1; a missing assessment yields 5.
func ProgrammingSkills(sa map[string]domain.SkillAnswer) int {
	if len(sa) == 0 {
		return neutralScore
	}
	a := assessment(sa)
	sum := a.score(wizard.QuestionCodingExperience, missingScore) + a.score(wizard.QuestionAIExperience, missingScore)
	return (sum + 1) / 2
}

// LogicalThinking is the logical thinking score, 5 when unanswered.
func LogicalThinking(sa map[string]domain.SkillAnswer) int {
	return assessment(sa).score(wizard.QuestionLogicalThinking, neutralScore)
}

// PersonalityType classifies the student from major interest and family background.
func PersonalityType(sa map[string]domain.SkillAnswer) string {
	if len(sa) == 0 {
		return PersonalityExploring
	}
	a := assessment(sa)
	major := a.score(wizard.QuestionMajorInterest, neutralScore)
	family := a.score(wizard.QuestionFamilyBackground, neutralScore)
	switch {
	case major >= 7:
		return PersonalityPassionDriven
	case family >= 7:
		return PersonalityEnvSupported
	case major <= 3:
		return PersonalityPassive
	default:
		return PersonalityPractical
	}
}

// Assemble builds the profile sent to the prediction endpoint.
func Assemble(d wizard.StepData) domain.Profile {
	p := domain.Profile{
		Name:              strings.TrimSpace(d.Name),
		IdealCareer:       strings.TrimSpace(d.IdealCareer),
		CareerCustom:      strings.TrimSpace(d.CareerCustom),
		ProgrammingSkills: ProgrammingSkills(d.SkillsAssessment),
		LogicalThinking:   LogicalThinking(d.SkillsAssessment),
		PersonalityType:   PersonalityType(d.SkillsAssessment),
	}
	if len(d.TechInterests) > 0 {
		p.TechInterests = append([]string(nil), d.TechInterests...)
	}
	if d.LearningGoals != nil {
		lg := *d.LearningGoals
		p.LearningGoals = &lg
	}
	return p
}

// Reduced is the trimmed profile used for the fallback-prompt call: the resolved
// career, at most two interests and the derived scores.
func Reduced(p domain.Profile) domain.Profile {
	interests := []string{"编程开发"}
	if len(p.TechInterests) > 0 {
		n := min(len(p.TechInterests), 2)
		interests = append([]string(nil), p.TechInterests[:n]...)
	}
	return domain.Profile{
		Name:              p.Name,
		IdealCareer:       p.CareerTitle(),
		TechInterests:     interests,
		ProgrammingSkills: p.ProgrammingSkills,
		LogicalThinking:   p.LogicalThinking,
	}
}

// ToStudentProfile maps wizard data to the persisted profile row.
func ToStudentProfile(userID string, d wizard.StepData) domain.StudentProfile {
	sp := domain.StudentProfile{
		UserID:          userID,
		Name:            strings.TrimSpace(d.Name),
		StudentID:       d.StudentID,
		Phone:           d.Phone,
		Gender:          d.Gender,
		IdealCareer:     d.IdealCareer,
		CareerCustom:    d.CareerCustom,
		PersonalityType: PersonalityType(d.SkillsAssessment),
		Interests:       append([]string(nil), d.TechInterests...),
	}
	if d.LearningGoals != nil {
		lg := *d.LearningGoals
		sp.LearningGoals = &lg
	}
	if len(d.SkillsAssessment) > 0 {
		sp.SkillsAssessment = make(map[string]domain.SkillAnswer, len(d.SkillsAssessment))
		for k, v := range d.SkillsAssessment {
			sp.SkillsAssessment[k] = v
		}
	}
	return sp
}
