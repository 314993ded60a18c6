package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/photo"
	"github.com/fairyhunter13/ai-future-predictor/internal/wizard"
)

// Answers is the on-disk form of one wizard session.
type Answers struct {
	UserID        string            `yaml:"user_id"`
	Photo         string            `yaml:"photo"`
	Name          string            `yaml:"name"`
	StudentID     string            `yaml:"student_id"`
	Phone         string            `yaml:"phone"`
	Gender        string            `yaml:"gender"`
	IdealCareer   string            `yaml:"ideal_career"`
	CareerCustom  string            `yaml:"career_custom"`
	TechInterests []string          `yaml:"tech_interests"`
	Assessment    map[string]string `yaml:"assessment"`
	FourYearPlan  string            `yaml:"four_year_plan"`
	CareerPath    string            `yaml:"career_path"`
}

// loadAnswers parses the answers file and reads the photo it points to.
// A relative photo path is resolved against the answers file directory.
func loadAnswers(path string, maxPhotoBytes int64) (Answers, []byte, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Answers{}, nil, "", fmt.Errorf("read answers: %w", err)
	}
	var a Answers
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return Answers{}, nil, "", fmt.Errorf("parse answers: %w", err)
	}
	if a.Photo == "" {
		return a, nil, "", nil
	}
	p := a.Photo
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(path), p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Answers{}, nil, "", fmt.Errorf("read photo: %w", err)
	}
	ct, err := photo.Validate(data, maxPhotoBytes)
	if err != nil {
		return Answers{}, nil, "", fmt.Errorf("photo %s: %w", a.Photo, err)
	}
	return a, data, ct, nil
}

// drive feeds the answers through the reducer one step at a time, refusing to
// advance past an incomplete step. It stops on the processing step.
func drive(a Answers, photoData []byte, contentType string) (wizard.State, error) {
	s := wizard.Initial()
	advance := func() error {
		if !s.CanAdvance() {
			return fmt.Errorf("step %q is incomplete", s.Current)
		}
		s = wizard.Reduce(s, wizard.Next{})
		return nil
	}

	if err := advance(); err != nil {
		return s, err
	}

	if len(photoData) > 0 {
		s = wizard.Reduce(s, wizard.SetPhoto{Data: photoData, ContentType: contentType})
	}
	s = wizard.Reduce(s, wizard.SetInfo{
		Name:      a.Name,
		StudentID: a.StudentID,
		Phone:     a.Phone,
		Gender:    domain.Gender(a.Gender),
	})
	if err := advance(); err != nil {
		return s, err
	}

	s = wizard.Reduce(s, wizard.SetCareer{IdealCareer: a.IdealCareer, CareerCustom: a.CareerCustom})
	s = wizard.Reduce(s, wizard.SetTechInterests{Interests: a.TechInterests})
	if err := advance(); err != nil {
		return s, err
	}

	ids := make([]string, 0, len(a.Assessment))
	for id := range a.Assessment {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := wizard.LookupAnswer(id, a.Assessment[id]); !ok {
			return s, fmt.Errorf("assessment %s: unknown answer %q", id, a.Assessment[id])
		}
		s = wizard.Reduce(s, wizard.Answer{QuestionID: id, Value: a.Assessment[id]})
	}
	if err := advance(); err != nil {
		return s, err
	}

	goals := domain.LearningGoals{FourYearPlan: a.FourYearPlan, CareerPath: domain.CareerPath(a.CareerPath)}
	if goals.CareerPath != "" && !goals.CareerPath.Valid() {
		return s, fmt.Errorf("career_path: unknown value %q", a.CareerPath)
	}
	s = wizard.Reduce(s, wizard.SetLearningGoals{Goals: goals})
	if err := advance(); err != nil {
		return s, err
	}
	return s, nil
}
