// Package fallback builds deterministic predictions from the profile scores alone.
// It is used when the model call fails, when its output cannot be parsed, and by
// the requester's last tier.
package fallback

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// Variant selects the formula set.
type Variant int

const (
	// Service is used inside the prediction service when the model fails.
	Service Variant = iota
	// Local is the requester's final tier after both HTTP calls failed.
	Local
)

func (v Variant) String() string {
	if v == Local {
		return "local"
	}
	return "service"
}

// LocalConfidence is the fixed confidence of a locally built prediction.
const LocalConfidence = 0.6

// Rand is the creativity jitter source. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Build returns a complete prediction for p. Creativity is the only
// non-deterministic axis; pass a seeded rng to pin it. A nil rng uses the global source.
func Build(v Variant, p domain.Profile, rng Rand) domain.Prediction {
	if rng == nil {
		rng = globalRand{}
	}
	if v == Local {
		return buildLocal(p, rng)
	}
	return buildService(p, rng)
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Radar clamps every axis into 1..10.
func Radar(r domain.SkillRadar) domain.SkillRadar {
	return domain.SkillRadar{
		Technical:      clampInt(r.Technical, 1, 10),
		Communication:  clampInt(r.Communication, 1, 10),
		Leadership:     clampInt(r.Leadership, 1, 10),
		Creativity:     clampInt(r.Creativity, 1, 10),
		ProblemSolving: clampInt(r.ProblemSolving, 1, 10),
	}
}

func radar(ps, lt, creativity int) domain.SkillRadar {
	return Radar(domain.SkillRadar{
		Technical:      min(ps+2, 10),
		Communication:  min(6+lt/3, 9),
		Leadership:     min(5+ps/4, 8),
		Creativity:     creativity,
		ProblemSolving: min(lt+1, 10),
	})
}

func firstN(xs []string, n int) []string {
	if len(xs) == 0 {
		return nil
	}
	return append([]string(nil), xs[:min(len(xs), n)]...)
}

func interestAt(xs []string, i int, def string) string {
	if i < len(xs) && strings.TrimSpace(xs[i]) != "" {
		return xs[i]
	}
	return def
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// ServiceGPA is the service-variant GPA for a programming score.
func ServiceGPA(ps int) float64 { return round2(3.5 + float64(ps)/10*0.5) }

// LocalGPA is the local-variant GPA for a programming score.
func LocalGPA(ps int) float64 { return round2(3.5 + float64(ps)/10*0.4) }

// ServiceConfidence is min(0.75 + (ps+lt)/50, 0.95).
func ServiceConfidence(ps, lt int) float64 {
	return math.Min(0.75+float64(ps+lt)/50, 0.95)
}

func buildService(p domain.Profile, rng Rand) domain.Prediction {
	ps, lt := p.ProgrammingSkills, p.LogicalThinking
	gpa := ServiceGPA(ps)
	// The service variant only sees the listed career; a custom one falls to the default.
	career := strings.TrimSpace(p.IdealCareer)
	if career == "" {
		career = domain.DefaultCareer
	}

	techSkills := firstN(p.TechInterests, 3)
	if len(techSkills) == 0 {
		techSkills = []string{"编程开发", "系统设计"}
	}
	skills := append(techSkills, "项目管理", "团队协作")
	projects := clampInt(lt/3, 2, 6)

	allInterests := "技术开发"
	if len(p.TechInterests) > 0 {
		allInterests = strings.Join(p.TechInterests, "、")
	}
	topTwo := "核心技术"
	if len(p.TechInterests) > 0 {
		topTwo = strings.Join(firstN(p.TechInterests, 2), "和")
	}

	salary := "12-20K"
	if ps >= 7 {
		salary = "18-30K"
	}

	return domain.Prediction{
		GraduateAchievements: domain.GraduateAchievements{
			GPA:            gpa,
			Skills:         skills,
			Projects:       projects,
			Certifications: ps/3 + 1,
			Description: fmt.Sprintf("基于你当前%d/10的编程能力和%d/10的逻辑思维能力，预计四年后能够达到GPA %.2f的优秀学业水平。你将掌握%s等核心技能，完成%d个实践项目，获得相关专业认证。建议重点培养实践能力和创新思维。",
				ps, lt, gpa, strings.Join(techSkills, "、"), projects),
		},
		CareerAchievements: domain.CareerAchievements{
			Position:   career,
			Salary:     salary,
			Experience: "2-4年相关经验",
			Companies:  []string{"知名互联网公司", "科技独角兽企业", "创新型科技公司", "传统企业数字化部门"},
			Description: fmt.Sprintf("凭借扎实的专业基础和%s方向的深入发展，预计十年后能够胜任%s或相关高级职位。根据你的技术兴趣(%s)和能力特点，建议向技术专家或技术管理方向发展，薪资水平将达到行业中上游标准。",
				career, career, allInterests),
		},
		SkillRadarData: radar(ps, lt, min(6+rng.IntN(3), 9)),
		GrowthPath: domain.GrowthPath{
			Year1: fmt.Sprintf("大一阶段重点夯实基础：1)系统学习计算机基础理论和数学基础，目标GPA3.5+；2)掌握至少2门编程语言(%s、Java等)；3)参与1-2个课程项目，培养编程思维；4)加入相关技术社团，建立学习网络。",
				interestAt(p.TechInterests, 0, "Python")),
			Year2: fmt.Sprintf("大二阶段注重实践提升：1)深入学习数据结构和算法，强化逻辑思维能力；2)参与校内外技术竞赛或hackathon活动；3)开始个人项目开发，建立GitHub作品集；4)学习前沿技术栈，关注%s相关技术发展趋势。",
				career),
			Year3: fmt.Sprintf("大三阶段专业深化：1)选择专业方向深入学习，重点发展%s能力；2)寻找优质实习机会，积累真实项目经验；3)参与开源项目贡献，提升代码质量和协作能力；4)准备相关技术认证考试，增强求职竞争力。",
				topTwo),
			Year4: "大四阶段求职准备：1)完成高质量毕业设计，展示综合技术能力；2)系统性准备技术面试，刷题和项目复盘并重；3)积极参加校园招聘和实习转正机会；4)建立个人技术品牌，通过技术博客等方式展示专业能力和学习成果。",
		},
		ConfidenceScore: ServiceConfidence(ps, lt),
	}
}

func buildLocal(p domain.Profile, rng Rand) domain.Prediction {
	ps, lt := p.ProgrammingSkills, p.LogicalThinking

	skills := firstN(p.TechInterests, 3)
	if len(skills) == 0 {
		skills = []string{"编程开发", "项目管理", "团队协作"}
	}
	salary := "10-18K"
	if ps >= 7 {
		salary = "15-25K"
	}
	field := orDefault(p.IdealCareer, "软件开发")

	return domain.Prediction{
		GraduateAchievements: domain.GraduateAchievements{
			GPA:            LocalGPA(ps),
			Skills:         skills,
			Projects:       max(2, lt/2),
			Certifications: max(1, ps/3),
			Description: fmt.Sprintf("基于你的学习能力和专业兴趣，预计能够在四年内获得扎实的专业基础。建议重点关注%s的深入学习，通过项目实践提升综合能力。",
				interestAt(p.TechInterests, 0, "编程技能")),
		},
		CareerAchievements: domain.CareerAchievements{
			Position:   p.CareerTitle(),
			Salary:     salary,
			Experience: "2-4年相关经验",
			Companies:  []string{"互联网公司", "科技企业", "创新型公司", "传统企业IT部门"},
			Description: fmt.Sprintf("凭借专业技能的持续提升，预计能够在%s领域取得良好发展。建议多参与实际项目，积累工作经验，提升职场竞争力。",
				field),
		},
		SkillRadarData: radar(ps, lt, min(7+rng.IntN(2), 9)),
		GrowthPath: domain.GrowthPath{
			Year1: fmt.Sprintf("大一：夯实基础。掌握%s等编程语言，学好数学和计算机基础课程，培养编程思维，参与1-2个课程项目。",
				interestAt(p.TechInterests, 0, "Python")),
			Year2: fmt.Sprintf("大二：技能提升。深入学习数据结构与算法，参与技术竞赛，开始个人项目开发，学习%s等专业技能。",
				interestAt(p.TechInterests, 1, "前端技术")),
			Year3: fmt.Sprintf("大三：专业深化。选择%s方向深入学习，寻找优质实习机会，参与开源项目，准备技术认证考试。", field),
			Year4: "大四：求职准备。完成高质量毕业设计，系统准备技术面试，积极参加校园招聘，建立个人技术品牌和作品集。",
		},
		ConfidenceScore: LocalConfidence,
	}
}
