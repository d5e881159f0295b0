package engine

import (
	"strings"

	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/fallback"
	"github.com/namancryu/TravelPMS/internal/util"
)

const systemPromptText = `당신은 "여행이"라는 이름의 전문 AI 여행 컨설턴트입니다.

## 역할
- 자연스럽고 친근한 대화로 사용자의 여행 니즈를 파악합니다
- 한 번에 2-3개 이하의 질문만 자연스럽게 합니다
- 충분한 정보가 모이면 전 세계 어디든 사용자에게 가장 잘 맞는 목적지를 추천합니다
- 사용자가 특정 국가나 도시를 언급하면 반드시 그 지역 안에서만 추천합니다
- 사용자가 원하지 않은 국가나 도시는 추천하지 않습니다
{{- if or .HomeCity .HomeCountry}}

## 사용자 거주 정보
- 거주 국가: {{default "알 수 없음" .HomeCountry}}
- 거주 도시: {{default "알 수 없음" .HomeCity}}
{{- if .HomeCity}}
- 거주 도시({{.HomeCity}})는 절대 여행지로 추천하지 마세요
{{- end}}
{{- if .HomeCountry}}
- 거주 국가({{.HomeCountry}}) 안의 여행은 국내 여행으로 안내하세요
{{- end}}
{{- end}}
{{- if .BudgetAmount}}

## 예산 제약
- 총 예산: {{won .BudgetAmount}}원
- 여행 인원: {{.TravelerCount}}명
- 1인당 예산: {{won .PerPerson}}원
- 반드시 1인당 {{won .PerPerson}}원 이하의 여행지만 추천하세요
{{- end}}

## 파악할 정보 (중요도순)
1. 여행 형태: 패키지 여행 또는 자유여행
2. 여행 목적과 스타일 (힐링, 맛집, 관광, 액티비티 등)
3. 동행인 (혼자, 커플, 가족, 친구), 가족이면 구성원
4. 예산 범위
5. 여행 기간
6. 선호 및 비선호 사항

## 현재 대화 상태: {{.State}}
## 파악된 컨텍스트: {{json .Context}}
## 대화 횟수: {{.MessageCount}}회

## 응답 규칙
- 반드시 한국어로만 답변하고 한자는 쓰지 마세요
- 이모지를 적절히 사용하세요
- 답변은 2-4문장으로 간결하게 하세요

## 상태별 행동
- GREETING: 반갑게 인사하고 여행 계획을 자유롭게 물어봅니다
- GATHERING: 여행 스타일, 동행인, 예산을 파악합니다
- DEEPENING: 기간, 선호도, 제약사항을 파악합니다
- RECOMMENDING: 목적지 3곳을 추천하고 아래 JSON을 답변 끝에 붙입니다
- SELECTING: 사용자가 고른 여행지의 세부 일정을 제안합니다

## 추천 JSON 형식 (RECOMMENDING 상태에서만)
` + "```json" + `
{"recommendations": [
  {"id": "turkey-istanbul", "name": "이스탄불", "country": "튀르키예", "flag": "🇹🇷", "matchScore": 95, "reason": "추천 이유", "estimatedCost": 1500000, "highlights": ["아야 소피아", "그랜드 바자르"], "bestSeason": "4-6월, 9-11월", "currency": "TRY"}
]}
` + "```" + `
- id: 영문 소문자 (국가-도시)
- name, country: 한글 이름
- estimatedCost: 자유여행 1인 예상비용, 원화 숫자만
{{- if .BudgetAmount}} (1인당 {{won .PerPerson}}원 이하){{end}}
- highlights: 주요 명소 3-4개
- currency: 현지 통화 코드 (USD, EUR, JPY 등)`

const turnPromptText = `{{.System}}
{{- if .History}}

이전 대화:
{{- range .History}}
{{speaker .Role}}: {{.Content}}
{{- end}}
{{- end}}

사용자: {{.Message}}

AI:`

var promptFuncs = map[string]any{
	"won":     fallback.FormatAmount,
	"speaker": speaker,
}

func speaker(r core.Role) string {
	if r == core.RoleUser {
		return "사용자"
	}
	return "AI"
}

// PromptBuilder renders the provider prompt for a turn: the consultant
// persona with home-city and budget guidance, the session's state and
// context, the prior conversation, and the current message.
type PromptBuilder struct {
	system *util.Template
	turn   *util.Template
	// historyLimit caps the number of prior messages included. Zero keeps all.
	historyLimit int
}

// NewPromptBuilder creates a builder with the built-in templates.
func NewPromptBuilder(historyLimit int) *PromptBuilder {
	return &PromptBuilder{
		system:       util.MustTemplate("system", systemPromptText, promptFuncs),
		turn:         util.MustTemplate("turn", turnPromptText, promptFuncs),
		historyLimit: historyLimit,
	}
}

type systemData struct {
	State         core.ConversationState
	Context       core.TravelContext
	MessageCount  int
	HomeCity      string
	HomeCountry   string
	BudgetAmount  int64
	TravelerCount int
	PerPerson     int64
}

type turnData struct {
	System  string
	History []core.Message
	Message string
}

// System renders only the persona and session guidance.
func (b *PromptBuilder) System(s *core.Session) (string, error) {
	count := s.Context.EffectiveTravelerCount()
	return b.system.Render(systemData{
		State:         s.State,
		Context:       s.Context,
		MessageCount:  s.MessageCount,
		HomeCity:      s.HomeCity,
		HomeCountry:   s.HomeCountry,
		BudgetAmount:  s.Context.BudgetAmount,
		TravelerCount: count,
		PerPerson:     s.Context.BudgetAmount / int64(count),
	})
}

// Build renders the full prompt. Every message already in s.History counts
// as prior conversation; message is the current turn.
func (b *PromptBuilder) Build(s *core.Session, message string) (string, error) {
	system, err := b.System(s)
	if err != nil {
		return "", err
	}
	history := s.History
	if b.historyLimit > 0 && len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}
	return b.turn.Render(turnData{
		System:  strings.TrimSpace(system),
		History: history,
		Message: message,
	})
}
