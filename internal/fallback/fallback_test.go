package fallback

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

type fixedRand int

func (f fixedRand) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func profile(ps, lt int, interests ...string) domain.Profile {
	return domain.Profile{
		Name:              "张三",
		IdealCareer:       "AI工程师",
		TechInterests:     interests,
		ProgrammingSkills: ps,
		LogicalThinking:   lt,
	}
}

func TestBuild_WorkedExample(t *testing.T) {
	p := Build(Service, profile(8, 7, "人工智能", "大数据"), fixedRand(0))

	assert.Equal(t, 3.90, p.GraduateAchievements.GPA)
	assert.Equal(t, 10, p.SkillRadarData.Technical)
	assert.Equal(t, 8, p.SkillRadarData.ProblemSolving)
	assert.Equal(t, 8, p.SkillRadarData.Communication)
	assert.Equal(t, 7, p.SkillRadarData.Leadership)
	assert.Equal(t, 6, p.SkillRadarData.Creativity)
	assert.Equal(t, 2, p.GraduateAchievements.Projects)
	assert.Equal(t, 3, p.GraduateAchievements.Certifications)
	assert.Equal(t, "18-30K", p.CareerAchievements.Salary)
	assert.Equal(t, []string{"人工智能", "大数据", "项目管理", "团队协作"}, p.GraduateAchievements.Skills)
	assert.InDelta(t, 0.95, p.ConfidenceScore, 1e-9)
	assert.Contains(t, p.GrowthPath.Year3, "人工智能和大数据")
	assert.Contains(t, p.GraduateAchievements.Description, "GPA 3.90")
}

func TestBuild_LocalVariant(t *testing.T) {
	p := Build(Local, profile(8, 7, "前端开发"), fixedRand(1))

	assert.Equal(t, 3.82, p.GraduateAchievements.GPA)
	assert.Equal(t, 3, p.GraduateAchievements.Projects)
	assert.Equal(t, 2, p.GraduateAchievements.Certifications)
	assert.Equal(t, "15-25K", p.CareerAchievements.Salary)
	assert.Equal(t, 8, p.SkillRadarData.Creativity)
	assert.Equal(t, LocalConfidence, p.ConfidenceScore)
	assert.Equal(t, []string{"前端开发"}, p.GraduateAchievements.Skills)
	assert.Contains(t, p.GrowthPath.Year1, "前端开发")
	assert.Contains(t, p.GrowthPath.Year2, "前端技术")
}

func TestBuild_Defaults(t *testing.T) {
	svc := Build(Service, domain.Profile{ProgrammingSkills: 1, LogicalThinking: 1}, fixedRand(0))
	assert.Equal(t, []string{"编程开发", "系统设计", "项目管理", "团队协作"}, svc.GraduateAchievements.Skills)
	assert.Equal(t, domain.DefaultCareer, svc.CareerAchievements.Position)
	assert.Equal(t, "12-20K", svc.CareerAchievements.Salary)
	assert.Contains(t, svc.GrowthPath.Year1, "Python")
	assert.Contains(t, svc.GrowthPath.Year3, "核心技术")

	loc := Build(Local, domain.Profile{CareerCustom: "宇航员", ProgrammingSkills: 1, LogicalThinking: 1}, fixedRand(0))
	assert.Equal(t, []string{"编程开发", "项目管理", "团队协作"}, loc.GraduateAchievements.Skills)
	assert.Equal(t, "宇航员", loc.CareerAchievements.Position)
	assert.Equal(t, "10-18K", loc.CareerAchievements.Salary)
	assert.Equal(t, 2, loc.GraduateAchievements.Projects)
	assert.Equal(t, 1, loc.GraduateAchievements.Certifications)
	assert.Contains(t, loc.GrowthPath.Year3, "软件开发")
}

func TestBuild_CustomCareerOnlyInLocalVariant(t *testing.T) {
	p := domain.Profile{CareerCustom: "宇航员", ProgrammingSkills: 5, LogicalThinking: 5}
	assert.Equal(t, domain.DefaultCareer, Build(Service, p, fixedRand(0)).CareerAchievements.Position)
	assert.Equal(t, "宇航员", Build(Local, p, fixedRand(0)).CareerAchievements.Position)

	p.IdealCareer = "数据科学家"
	assert.Equal(t, "数据科学家", Build(Service, p, fixedRand(0)).CareerAchievements.Position)
}

func TestBuild_RadarAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, v := range []Variant{Service, Local} {
		for ps := 1; ps <= 9; ps++ {
			for lt := 1; lt <= 9; lt++ {
				r := Build(v, profile(ps, lt), rng).SkillRadarData
				for _, axis := range []int{r.Technical, r.Communication, r.Leadership, r.Creativity, r.ProblemSolving} {
					require.GreaterOrEqual(t, axis, 1, "%s ps=%d lt=%d", v, ps, lt)
					require.LessOrEqual(t, axis, 10, "%s ps=%d lt=%d", v, ps, lt)
				}
			}
		}
	}
}

func TestGPA_MonotonicInProgrammingSkills(t *testing.T) {
	for ps := 1; ps < 9; ps++ {
		assert.Less(t, ServiceGPA(ps), ServiceGPA(ps+1))
		assert.Less(t, LocalGPA(ps), LocalGPA(ps+1))
	}
}

func TestServiceConfidence_Bounds(t *testing.T) {
	for ps := 1; ps <= 9; ps++ {
		for lt := 1; lt <= 9; lt++ {
			c := ServiceConfidence(ps, lt)
			assert.GreaterOrEqual(t, c, 0.75)
			assert.LessOrEqual(t, c, 0.95)
		}
	}
}

func TestBuild_IdempotentExceptCreativity(t *testing.T) {
	p := profile(5, 5, "云计算", "区块链", "物联网", "机器学习")
	a := Build(Service, p, fixedRand(0))
	b := Build(Service, p, fixedRand(2))

	assert.NotEqual(t, a.SkillRadarData.Creativity, b.SkillRadarData.Creativity)
	a.SkillRadarData.Creativity, b.SkillRadarData.Creativity = 0, 0
	assert.Equal(t, a, b)
	assert.Len(t, a.GraduateAchievements.Skills, 5)
	assert.True(t, strings.HasPrefix(a.GraduateAchievements.Description, "基于你当前5/10"))
}

func TestBuild_NilRandUsesGlobal(t *testing.T) {
	p := Build(Local, profile(3, 3), nil)
	assert.GreaterOrEqual(t, p.SkillRadarData.Creativity, 7)
	assert.LessOrEqual(t, p.SkillRadarData.Creativity, 8)
}

func TestRadar_Clamps(t *testing.T) {
	r := Radar(domain.SkillRadar{Technical: 0, Communication: 11, Leadership: -4, Creativity: 5, ProblemSolving: 10})
	assert.Equal(t, domain.SkillRadar{Technical: 1, Communication: 10, Leadership: 1, Creativity: 5, ProblemSolving: 10}, r)
}
