package wizard

import "github.com/fairyhunter13/ai-future-predictor/internal/domain"

// Assessment question ids. The wizard requires exactly these five answers.
const (
	QuestionCodingExperience = "coding_experience"
	QuestionLogicalThinking  = "logical_thinking"
	QuestionAIExperience     = "ai_experience"
	QuestionFamilyBackground = "family_background"
	QuestionMajorInterest    = "major_interest"
)

// CareerOptions are the preset careers offered on the career step.
var CareerOptions = []string{
	"全栈开发工程师",
	"前端开发工程师",
	"后端开发工程师",
	"AI工程师",
	"大数据工程师",
	"云计算工程师",
	"网络安全工程师",
	"移动应用开发工程师",
	"游戏开发工程师",
	"DevOps工程师",
	"算法工程师",
	"产品经理",
	"UI/UX设计师",
	"技术架构师",
	"创业者",
}

// TechInterests are the selectable technology interests.
var TechInterests = []string{
	"前端开发",
	"后端开发",
	"移动开发",
	"人工智能",
	"大数据",
	"云计算",
	"网络安全",
	"游戏开发",
	"区块链",
	"物联网",
	"机器学习",
	"数据科学",
}

// FourYearPlans are the preset four-year plans on the learning goals step.
var FourYearPlans = []string{
	"深入学习技术栈，成为技术专家",
	"培养全栈能力，掌握前后端技术",
	"专注AI/机器学习方向",
	"发展产品思维，向技术管理转型",
	"积累项目经验，准备创业",
}

// CareerPathLabels maps each career path to its display label.
var CareerPathLabels = map[domain.CareerPath]string{
	domain.CareerPathBigCompany:   "入职大厂就业",
	domain.CareerPathGraduate:     "继续深造(考研/留学)",
	domain.CareerPathStartup:      "创业当老板的想法",
	domain.CareerPathCivilService: "考公务员",
	domain.CareerPathCareerChange: "转行做其他的",
}

// Option is one selectable answer with its score on the 1..9 scale.
type Option struct {
	Value string
	Label string
	Score int
}

// Question is one assessment item.
type Question struct {
	ID     string
	Title  string
	Prompt string
	// Options are ordered by ascending score (1,3,5,7,9).
	Options []Option
}

// Questions is the fixed five-question assessment.
var Questions = []Question{
	{
		ID:     QuestionCodingExperience,
		Title:  "编程经验",
		Prompt: "你有任何编程经验吗？",
		Options: []Option{
			{"none", "完全没有接触过编程", 1},
			{"scratch", "玩过Scratch或类似的图形化编程", 3},
			{"basic", "学过一点Python、C++等语言基础", 5},
			{"projects", "做过一些小项目或练习题", 7},
			{"advanced", "参加过编程竞赛或有完整项目经验", 9},
		},
	},
	{
		ID:     QuestionLogicalThinking,
		Title:  "逻辑思维",
		Prompt: "你喜欢逻辑思维比较强的内容吗？",
		Options: []Option{
			{"dislike", "不太喜欢，觉得烧脑", 1},
			{"ok", "还可以，偶尔接触", 3},
			{"like", "比较喜欢推理小说、数学题等", 5},
			{"love", "很喜欢解密游戏、逻辑推理", 7},
			{"expert", "热爱数学竞赛、编程解题等挑战", 9},
		},
	},
	{
		ID:     QuestionAIExperience,
		Title:  "AI接触经验",
		Prompt: "你接触过大模型（如ChatGPT、文心一言等）吗？",
		Options: []Option{
			{"never", "从来没用过", 1},
			{"heard", "听说过但没怎么用", 3},
			{"basic", "偶尔用来回答问题", 5},
			{"frequent", "经常使用，会写提示词", 7},
			{"advanced", "深度使用，了解各种AI工具", 9},
		},
	},
	{
		ID:     QuestionFamilyBackground,
		Title:  "家庭环境",
		Prompt: "你的亲戚朋友中有从事软件开发的人吗？",
		Options: []Option{
			{"none", "没有，对这个行业不太了解", 1},
			{"distant", "有远房亲戚，但接触不多", 3},
			{"some", "有一些朋友或表亲在做开发", 5},
			{"close", "有比较亲近的人在软件行业", 7},
			{"family", "父母或兄弟姐妹就是程序员", 9},
		},
	},
	{
		ID:     QuestionMajorInterest,
		Title:  "专业兴趣",
		Prompt: "你选择软件工程专业是因为？",
		Options: []Option{
			{"assigned", "被调剂的，不是我的第一志愿", 1},
			{"family", "家人建议的，我自己不太了解", 3},
			{"practical", "觉得就业前景好，比较实用", 5},
			{"interested", "对编程和技术比较感兴趣", 7},
			{"passionate", "非常喜欢，这就是我的第一选择", 9},
		},
	},
}

// LookupAnswer resolves a question id and option value to a scored answer.
func LookupAnswer(questionID, value string) (domain.SkillAnswer, bool) {
	for _, q := range Questions {
		if q.ID != questionID {
			continue
		}
		for _, o := range q.Options {
			if o.Value == value {
				return domain.SkillAnswer{Value: o.Value, Score: o.Score}, true
			}
		}
		return domain.SkillAnswer{}, false
	}
	return domain.SkillAnswer{}, false
}
