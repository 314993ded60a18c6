// Package stub provides a deterministic offline model used when no provider key is configured.
package stub

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// Client answers every chat with a fixed, schema-valid prediction and every
// image request with a placeholder URL derived from the prompt.
type Client struct {
	ImageBaseURL string
}

var (
	_ domain.AIClient       = (*Client)(nil)
	_ domain.ImageGenerator = (*Client)(nil)
)

func New() *Client { return &Client{ImageBaseURL: "https://placehold.co/1024x1024"} }

// ChatJSON returns a compact JSON string matching the prediction schema.
func (c *Client) ChatJSON(_ domain.Context, req domain.ChatRequest) (string, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return "", fmt.Errorf("op=stub.chat: %w: empty prompt", domain.ErrInvalidArgument)
	}
	p := domain.Prediction{
		GraduateAchievements: domain.GraduateAchievements{
			GPA:            3.7,
			Skills:         []string{"Python", "数据结构", "Web开发", "项目管理"},
			Projects:       4,
			Certifications: 2,
			Description:    "四年里系统掌握计算机基础，完成多个课程与个人项目，以优良成绩毕业。",
		},
		CareerAchievements: domain.CareerAchievements{
			Position:    domain.DefaultCareer,
			Salary:      "15-25K",
			Experience:  "3-5年相关经验",
			Companies:   []string{"互联网公司", "科技企业"},
			Description: "十年后成长为团队核心开发者，负责关键系统的设计与交付。",
		},
		SkillRadarData: domain.SkillRadar{Technical: 8, Communication: 7, Leadership: 6, Creativity: 7, ProblemSolving: 8},
		GrowthPath: domain.GrowthPath{
			Year1: "大一：夯实编程与数学基础。",
			Year2: "大二：学习数据结构与算法，参加竞赛。",
			Year3: "大三：确定方向，寻找实习。",
			Year4: "大四：完成毕业设计，准备求职。",
		},
		ConfidenceScore: 0.8,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GenerateImage returns a stable placeholder URL per prompt.
func (c *Client) GenerateImage(_ domain.Context, prompt string) (string, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return fmt.Sprintf("%s?seed=%08x", c.ImageBaseURL, h.Sum32()), nil
}
