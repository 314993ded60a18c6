package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// Token budgets and sampling for the two prompt variants.
const (
	FullPromptMaxTokens     = 3000
	FallbackPromptMaxTokens = 1500
	PromptTemperature       = 0.7
)

const fullSystemPrompt = `你是一个专业的AI生涯规划师和教育咨询专家。请基于用户提供的信息，生成详细、个性化的未来预测分析。

请根据学生的专业背景、兴趣爱好、能力水平等信息，提供具体而实用的建议。每个成长阶段的描述应该包含3-5个具体的行动建议和目标。

返回格式为JSON，包含以下字段：
{
  "graduate_achievements": {
    "gpa": number, // 基于学生能力预测的GPA
    "skills": string[], // 3-5个核心技能
    "projects": number, // 预期完成的项目数量
    "certifications": number, // 建议获得的证书数量
    "description": string // 100-150字的详细描述，包含具体的成就预测和建议
  },
  "career_achievements": {
    "position": string, // 具体职位
    "salary": string, // 薪资范围
    "experience": string, // 工作经验
    "companies": string[], // 3-5个可能的公司类型
    "description": string // 100-150字的详细描述，包含职业发展路径和成就预测
  },
  "skill_radar_data": {
    "technical": number, // 1-10分
    "communication": number,
    "leadership": number,
    "creativity": number,
    "problem_solving": number
  },
  "growth_path": {
    "year1": string, // 80-120字，包含3-4个具体的学习目标和行动计划
    "year2": string, // 80-120字，包含3-4个具体的能力提升和实践目标
    "year3": string, // 80-120字，包含3-4个专业深化和实习相关目标
    "year4": string // 80-120字，包含3-4个求职准备和毕业项目目标
  },
  "confidence_score": number // 0.0-1.0，基于信息完整度和匹配度
}`

const fallbackSystemPrompt = `你是一个AI教育规划助手。基于学生基本信息生成未来发展预测。返回JSON格式，包含graduate_achievements、career_achievements、skill_radar_data、growth_path、confidence_score字段。保持内容简洁但有用。`

const fullUserPromptTemplate = `请分析以下学生信息：
姓名：%s
理想职业：%s
技术兴趣：%s
编程能力：%d/10
逻辑思维：%d/10
性格类型：%s
学习目标：%s

请基于以上信息生成详细的个性化分析报告，包括：
1. 四年后毕业成就预测（包含具体的GPA预测、核心技能清单、项目经验和证书建议）
2. 十年后职业成就预测（包含具体职位、薪资预期、可能就职的公司类型）
3. 五维能力雷达图数据（技术、沟通、领导、创新、问题解决能力的1-10分评估）
4. 详细的四年成长路径规划（每年包含3-4个具体目标和行动计划）
5. 基于信息完整度和能力匹配度的置信度评分

请确保每个部分的建议都具体、可执行，符合学生的实际情况和发展潜力。`

// Prompt is one rendered chat request plus the variant label used in metrics.
type Prompt struct {
	Variant string
	domain.ChatRequest
}

// BuildPrompt renders the full or the fallback prompt for p.
func BuildPrompt(p domain.Profile, useFallback bool) Prompt {
	if useFallback {
		user := fmt.Sprintf("学生信息：姓名%s，理想职业%s，编程能力%d/10，逻辑思维%d/10。请生成预测分析。",
			p.Name, p.IdealCareer, p.ProgrammingSkills, p.LogicalThinking)
		return Prompt{Variant: "fallback", ChatRequest: domain.ChatRequest{
			SystemPrompt: fallbackSystemPrompt,
			UserPrompt:   user,
			MaxTokens:    FallbackPromptMaxTokens,
			Temperature:  PromptTemperature,
		}}
	}
	career := p.IdealCareer
	if career == "" {
		career = p.CareerCustom
	}
	goals := "null"
	if p.LearningGoals != nil {
		if b, err := json.Marshal(p.LearningGoals); err == nil {
			goals = string(b)
		}
	}
	user := fmt.Sprintf(fullUserPromptTemplate, p.Name, career, strings.Join(p.TechInterests, ", "),
		p.ProgrammingSkills, p.LogicalThinking, p.PersonalityType, goals)
	return Prompt{Variant: "full", ChatRequest: domain.ChatRequest{
		SystemPrompt: fullSystemPrompt,
		UserPrompt:   user,
		MaxTokens:    FullPromptMaxTokens,
		Temperature:  PromptTemperature,
	}}
}

// GraduateImagePrompt asks for a graduation portrait.
func GraduateImagePrompt() string {
	return "基于用户照片生成一个专业的大学毕业照，身穿学士服，在校园环境中，表情自信阳光"
}

// CareerImagePrompt asks for a workplace portrait for the given career.
func CareerImagePrompt(careerTitle string) string {
	return fmt.Sprintf("生成一个专业的职场人士形象，%s，身穿商务装，在现代办公环境中，表情专业自信", careerTitle)
}
