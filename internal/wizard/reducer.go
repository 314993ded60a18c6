package wizard

import "github.com/fairyhunter13/ai-future-predictor/internal/domain"

// Action is a wizard event. The set is closed; see the types below.
type Action interface{ isAction() }

type (
	// Next moves forward one step, clamped to the last step.
	Next struct{}
	// Prev moves back one step, clamped to the first step.
	Prev struct{}
	// GoTo jumps to a step; out-of-range targets are clamped.
	GoTo struct{ Step Step }
	// SetPhoto stores the raw photo bytes.
	SetPhoto struct {
		Data        []byte
		ContentType string
	}
	// SetInfo stores the basic information fields.
	SetInfo struct {
		Name      string
		StudentID string
		Phone     string
		Gender    domain.Gender
	}
	// SetCareer stores the preset or custom career.
	SetCareer struct {
		IdealCareer  string
		CareerCustom string
	}
	// SetTechInterests replaces the interest list.
	SetTechInterests struct{ Interests []string }
	// Answer records one assessment answer; unknown question/value pairs are ignored.
	Answer struct {
		QuestionID string
		Value      string
	}
	// SetLearningGoals replaces the learning goals.
	SetLearningGoals struct{ Goals domain.LearningGoals }
	// SetProcessing toggles the processing flag.
	SetProcessing struct{ Processing bool }
	// Reset returns to the initial state.
	Reset struct{}
)

func (Next) isAction()             {}
func (Prev) isAction()             {}
func (GoTo) isAction()             {}
func (SetPhoto) isAction()         {}
func (SetInfo) isAction()          {}
func (SetCareer) isAction()        {}
func (SetTechInterests) isAction() {}
func (Answer) isAction()           {}
func (SetLearningGoals) isAction() {}
func (SetProcessing) isAction()    {}
func (Reset) isAction()            {}

func clampStep(s Step) Step {
	if s < StepWelcome {
		return StepWelcome
	}
	if s > StepResults {
		return StepResults
	}
	return s
}

// Reduce returns the state that results from applying a to s.
func Reduce(s State, a Action) State {
	next := State{Current: s.Current, Data: s.Data.clone(), Processing: s.Processing}
	switch act := a.(type) {
	case Next:
		next.Current = clampStep(s.Current + 1)
	case Prev:
		next.Current = clampStep(s.Current - 1)
	case GoTo:
		next.Current = clampStep(act.Step)
	case SetPhoto:
		next.Data.Photo = append([]byte(nil), act.Data...)
		next.Data.PhotoContentType = act.ContentType
	case SetInfo:
		next.Data.Name = act.Name
		next.Data.StudentID = act.StudentID
		next.Data.Phone = act.Phone
		next.Data.Gender = act.Gender
	case SetCareer:
		next.Data.IdealCareer = act.IdealCareer
		next.Data.CareerCustom = act.CareerCustom
	case SetTechInterests:
		next.Data.TechInterests = append([]string(nil), act.Interests...)
	case Answer:
		ans, ok := LookupAnswer(act.QuestionID, act.Value)
		if !ok {
			return next
		}
		if next.Data.SkillsAssessment == nil {
			next.Data.SkillsAssessment = make(map[string]domain.SkillAnswer, len(Questions))
		}
		next.Data.SkillsAssessment[act.QuestionID] = ans
	case SetLearningGoals:
		g := act.Goals
		next.Data.LearningGoals = &g
	case SetProcessing:
		next.Processing = act.Processing
	case Reset:
		return Initial()
	}
	return next
}
