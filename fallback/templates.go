package fallback

import (
	"fmt"
	"strings"

	"github.com/namancryu/TravelPMS/core"
)

// Greeting is the opening line of every consultation.
const Greeting = "안녕하세요! 저는 **여행이**, AI 여행 컨설턴트예요 ✈️\n\n어떤 여행을 꿈꾸고 계세요? 자유롭게 이야기해 주세요! 😊"

var styleNames = map[string]string{
	"beach":      "바다/해변",
	"relaxation": "힐링",
	"food":       "맛집",
	"shopping":   "쇼핑",
	"city":       "도시관광",
	"nature":     "자연",
	"adventure":  "액티비티",
	"culture":    "문화/역사",
}

var companionNames = map[string]string{
	core.CompanionFamily:  "가족",
	core.CompanionCouple:  "커플",
	core.CompanionFriends: "친구",
	core.CompanionSolo:    "혼자",
}

var tierNames = map[core.BudgetTier]string{
	core.BudgetLow:    "가성비",
	core.BudgetMedium: "보통",
	core.BudgetHigh:   "럭셔리",
}

// pick chooses a template by seed so identical sessions get identical text.
func pick(seed int, options ...string) string {
	if seed < 0 {
		seed = -seed
	}
	return options[seed%len(options)]
}

func gatheringReply(tc core.TravelContext, seed int) string {
	var reaction string
	switch {
	case tc.HasPreference("beach") || tc.HasPreference("relaxation"):
		reaction = pick(seed,
			"바다에서 힐링하는 여행, 너무 좋죠! 🌊",
			"파도 소리 들으며 쉬는 거, 상상만 해도 좋네요 🏖️",
			"해변 여행이라니 벌써 설레요! ☀️")
	case tc.HasPreference("food"):
		reaction = pick(seed,
			"맛있는 거 먹으러 가는 여행, 최고죠! 🤤",
			"미식 여행이라니 저도 군침 돕니다 🍜",
			"현지 음식 탐방이 여행의 꽃이죠! 😋")
	case tc.HasPreference("shopping"):
		reaction = pick(seed,
			"쇼핑 여행! 면세점 털 준비 되셨나요? 🛍️",
			"쇼핑 리스트 미리 준비하면 효율 200%예요 💳")
	case tc.HasPreference("adventure") || tc.HasPreference("nature"):
		reaction = pick(seed,
			"액티비티를 좋아하시는군요! 모험가시네요 🏄",
			"자연 속에서 즐기는 여행, 정말 좋은 선택이에요 🌿")
	case tc.HasPreference("culture"):
		reaction = pick(seed,
			"문화 탐방 여행, 깊이 있는 여행이 되겠네요 🏛️",
			"역사와 문화를 느끼는 여행, 멋져요! ⛩️")
	case tc.Travelers == core.CompanionFamily:
		reaction = pick(seed,
			"가족 여행! 아이들이랑 추억 만들기 딱이죠 👨‍👩‍👧‍👦",
			"가족이 함께하는 여행은 특별하죠! 온 가족이 다 즐길 수 있게 준비해볼게요 🥰")
	case tc.Travelers == core.CompanionCouple:
		reaction = pick(seed,
			"둘이서 떠나는 여행, 로맨틱하겠네요 💕",
			"커플 여행이면 분위기 좋은 곳으로 추천해드릴게요 💑")
	case tc.Travelers == core.CompanionFriends:
		reaction = pick(seed,
			"친구들이랑 여행! 신나겠다 🎉",
			"친구들과 함께면 어디든 재밌죠! 🤜🤛")
	default:
		reaction = pick(seed,
			"오, 좋은 계획이에요! 👍",
			"재밌는 여행이 될 것 같아요! ✨",
			"알겠어요, 좋은 곳 찾아드릴게요! 😊")
	}

	hasBudget := tc.Budget != core.BudgetUnset || tc.BudgetAmount > 0
	var question string
	switch {
	case tc.Travelers == "" && !hasBudget && tc.Duration == "":
		question = pick(seed,
			"좀 더 알려주시면 딱 맞는 곳을 찾아드릴 수 있어요!\n• 누구랑 가세요? 혼자? 가족? 친구?\n• 대략 예산은 어느 정도 생각하세요?",
			"맞춤 추천을 위해 몇 가지만 더 알려주세요 🙏\n• 같이 가는 분이 있으세요?\n• 예산 범위가 있으면 알려주세요!")
	case tc.Travelers == "":
		question = pick(seed,
			"혹시 누구랑 함께 가시나요? 혼자, 커플, 가족, 친구... 동행자에 따라 추천이 달라져요!",
			"같이 가시는 분이 있으세요? 동행 인원을 알면 더 잘 맞춰드릴 수 있어요 😊")
	case !hasBudget:
		question = pick(seed,
			"예산은 어느 정도 생각하세요? 대략적으로만 알려주셔도 돼요! (예: 100만원, 가성비, 럭셔리...)",
			"혹시 1인당 예산이 있으세요? 맞춤 추천에 큰 도움이 돼요 💰")
	case tc.Duration == "":
		question = pick(seed,
			"며칠 정도 여행하실 계획이에요? 짧게 주말 여행도 좋고, 길게 일주일도 좋죠!",
			"여행 기간은 어떻게 되세요? 기간에 따라 추천 목적지가 달라져요 📅")
	default:
		question = pick(seed,
			"거의 파악됐어요! 😄 혹시 이전에 가봤던 해외여행 중 좋았던 곳이 있어요?",
			"좋아요, 잘 정리되고 있어요! 꼭 하고 싶은 활동이 있으면 알려주세요 (수영, 쇼핑, 맛집 등)")
	}
	return reaction + "\n\n" + question
}

func deepeningReply(tc core.TravelContext, seed int) string {
	var summary []string
	if len(tc.Preferences) > 0 {
		names := make([]string, len(tc.Preferences))
		for i, p := range tc.Preferences {
			if n, ok := styleNames[p]; ok {
				names[i] = n
			} else {
				names[i] = p
			}
		}
		summary = append(summary, "여행 스타일: "+strings.Join(names, ", "))
	}
	if n, ok := companionNames[tc.Travelers]; ok {
		summary = append(summary, "동행: "+n)
	}
	switch {
	case tc.BudgetAmount > 0:
		summary = append(summary, fmt.Sprintf("예산: %s만원", FormatAmount(tc.BudgetAmount/10000)))
	case tc.Budget != core.BudgetUnset:
		summary = append(summary, "예산: "+tierNames[tc.Budget])
	}
	if tc.Duration != "" {
		summary = append(summary, "기간: "+tc.Duration)
	}

	var b strings.Builder
	b.WriteString("지금까지 파악한 내용을 정리해볼게요 📋")
	for _, s := range summary {
		b.WriteString("\n✅ ")
		b.WriteString(s)
	}
	b.WriteString("\n\n")

	switch tc.Travelers {
	case core.CompanionFamily:
		if tc.TravelerDetails == "" {
			b.WriteString(pick(seed,
				"가족 여행이면 구성원에 따라 추천이 많이 달라져요!\n• 아이들이 있다면 나이가 어떻게 되나요?\n• 어르신도 함께 가시나요?",
				"가족 구성원을 좀 더 알려주세요 😊\n• 아이들이 몇 살인지, 총 몇 명인지 알려주시면\n  맞춤 일정을 짜드릴게요!"))
		} else {
			b.WriteString(pick(seed,
				"아이들과 함께라면 이런 것도 중요해요:\n• 리조트 수영장이 있으면 좋을까요? 🏊\n• 아이들이 좋아하는 특별한 활동이 있나요? (워터파크, 수족관 등)",
				"좋아요! 마지막으로 하나만 더:\n• 비행시간이 너무 길면 힘들까요? ✈️\n• 숙소는 리조트/호텔 중 어떤 게 편하세요?"))
		}
	case core.CompanionCouple:
		b.WriteString(pick(seed,
			"커플 여행이면 분위기가 중요하죠! 💕\n• 로맨틱한 레스토랑이나 야경 좋은 곳이 필요하세요?\n• 액티비티도 좋아하세요, 아니면 편하게 쉬는 게 좋으세요?",
			"둘만의 특별한 여행을 만들어봐요! ✨\n• 기념일이나 특별한 날인가요?\n• 사진 찍기 좋은 곳을 선호하세요?"))
	case core.CompanionFriends:
		b.WriteString(pick(seed,
			"친구들이랑이면 밤 문화도 중요하죠! 🌙\n• 다 같이 즐길 수 있는 액티비티가 좋을까요?\n• 클럽/바 같은 나이트라이프도 괜찮으세요?",
			"친구들 취향도 중요해요!\n• 다들 비슷한 취향이에요? 아니면 각자 하고 싶은 게 다른가요?\n• 총 몇 명이서 가시나요?"))
	default:
		b.WriteString(pick(seed,
			"거의 다 준비됐어요! 마지막 체크 🔍\n• 이전에 해외여행 가봤던 곳이 있어요?\n• 비행시간은 길어도 괜찮으세요?",
			"좋아요, 거의 다 왔어요! 😄\n• 꼭 피하고 싶은 게 있으면 알려주세요 (더위, 물가 비싼 곳 등)\n• 특별히 해보고 싶은 경험이 있나요?"))
	}
	return b.String()
}

func selectingReply(rec *core.Recommendation, tc core.TravelContext) string {
	name := tc.Destination
	if rec != nil {
		name = strings.TrimSpace(rec.Flag + " " + rec.Name)
	}
	if name == "" {
		return "좋아요! 어느 여행지로 정하셨는지 알려주시면 바로 세부 일정을 짜드릴게요 ✨"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "탁월한 선택이에요! **%s** 여행을 준비해볼게요 🎉\n\n", name)
	if tc.Duration != "" {
		fmt.Fprintf(&b, "%s 일정에 맞춰 ", tc.Duration)
	}
	b.WriteString("날짜별 세부 일정을 짜드릴까요?\n• 꼭 가보고 싶은 명소가 있으면 알려주세요\n• 숙소 위치나 등급에 선호가 있으세요?")
	return b.String()
}

func completeReply(tc core.TravelContext) string {
	if tc.Destination != "" {
		return fmt.Sprintf("**%s** 여행이 확정됐어요! ✈️\n\n일정, 숙소, 맛집 중 궁금한 걸 말씀해 주세요 😊", tc.Destination)
	}
	return "여행지가 확정됐어요! ✈️\n\n일정, 숙소, 맛집 중 궁금한 걸 말씀해 주세요 😊"
}
