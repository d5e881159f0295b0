package fallback

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/namancryu/TravelPMS/core"
)

var printer = message.NewPrinter(language.Korean)

var medals = []string{"🥇", "🥈", "🥉"}

// FormatAmount renders n with digit grouping, e.g. 1,800,000.
func FormatAmount(n int64) string {
	return printer.Sprintf("%d", n)
}

// RenderRecommendations writes the recommendation message shown to the
// traveler: an intro tuned to the companions, one entry per recommendation
// with total and per-person cost, and a budget note when a budget is known.
func RenderRecommendations(tc core.TravelContext, recs []core.Recommendation) string {
	if len(recs) == 0 {
		return "조건에 맞는 여행지를 아직 찾지 못했어요 😢\n\n가고 싶은 나라나 선호하는 여행 스타일을 조금 더 알려주시겠어요?"
	}

	var b strings.Builder
	b.WriteString("말씀하신 내용을 종합해서 분석해봤어요! 🔍\n\n")
	switch {
	case tc.Travelers == core.CompanionFamily:
		b.WriteString("가족 모두가 즐길 수 있는 곳으로 골라봤습니다 👨‍👩‍👧‍👦\n\n")
	case tc.Travelers == core.CompanionCouple:
		b.WriteString("둘이서 로맨틱한 시간을 보낼 수 있는 곳이에요 💑\n\n")
	case tc.HasPreference("beach"):
		b.WriteString("바다가 아름다운 곳 위주로 추천드려요 🏖️\n\n")
	case tc.HasPreference("food"):
		b.WriteString("맛집이 많은 곳들로 엄선했어요 🍽️\n\n")
	}

	count := int64(tc.EffectiveTravelerCount())
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		fmt.Fprintf(&b, "%s **%s %s** (매칭 %d%%)\n%s\n💰 %d인 총 %s원 (1인 %s원)",
			medal, r.Flag, r.Name, r.MatchScore, r.Reason,
			count, FormatAmount(r.EstimatedCost*count), FormatAmount(r.EstimatedCost))
	}

	if tc.BudgetAmount > 0 {
		fmt.Fprintf(&b, "\n\n💡 입력하신 예산: %d인 총 %s원 (1인 %s원)\n   위 추천은 모두 예산 내에서 가능한 여행지예요!",
			count, FormatAmount(tc.BudgetAmount), FormatAmount(tc.BudgetAmount/count))
	}
	b.WriteString("\n\n마음에 드는 곳이 있으면 알려주세요! 선택하시면 바로 세부 일정을 짜드릴게요 ✨")
	return b.String()
}
