package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/namancryu/TravelPMS/core"
)

type styleKeyword struct {
	keyword string
	style   string
}

// styleKeywords is scanned in order; the first hit seeds TravelStyle.
var styleKeywords = []styleKeyword{
	{"바다", "beach"}, {"해변", "beach"}, {"비치", "beach"}, {"수영", "beach"},
	{"힐링", "relaxation"}, {"휴양", "relaxation"}, {"쉬고", "relaxation"}, {"편히", "relaxation"},
	{"맛집", "food"}, {"먹방", "food"}, {"음식", "food"}, {"먹을거리", "food"}, {"맛있", "food"},
	{"쇼핑", "shopping"}, {"면세", "shopping"},
	{"관광", "city"}, {"도시", "city"}, {"구경", "city"},
	{"자연", "nature"}, {"등산", "nature"}, {"숲", "nature"}, {"트레킹", "nature"},
	{"놀거리", "adventure"}, {"액티비티", "adventure"}, {"체험", "adventure"}, {"놀이", "adventure"},
	{"문화", "culture"}, {"역사", "culture"}, {"사원", "culture"}, {"박물관", "culture"},
}

var (
	packageRE = regexp.MustCompile(`패키지|단체.*여행|투어.*상품|여행사|가이드`)
	freeRE    = regexp.MustCompile(`자유.*여행|자유.*일정|개별.*여행|배낭|직접.*예약|에어비앤비`)

	familyRE  = regexp.MustCompile(`가족|아이|아들|딸|부모님|엄마|아빠|자녀|어른|초등|중등|고등|유아|영아`)
	coupleRE  = regexp.MustCompile(`커플|여자친구|남자친구|신혼|둘이`)
	friendsRE = regexp.MustCompile(`친구|동료|단체`)
	soloRE    = regexp.MustCompile(`혼자|나홀로|솔로`)

	headcountRE   = regexp.MustCompile(`(\d+)\s*명`)
	detailGateRE  = regexp.MustCompile(`어른|성인|고등|중학|초등|유치원|살|학년|학생`)
	detailCountRE = regexp.MustCompile(`(?:어른|성인|고등(?:학생)?|중학생?|초등(?:학생)?|유치원생?|아이|유아|영아|학생)\s*\d*\s*(?:학년\s*)?(\d+)\s*명`)

	manwonRE      = regexp.MustCompile(`(\d+)\s*만\s*원?`)
	budgetKeyRE   = regexp.MustCompile(`(?:총|예산|비용|돈|budget)\s*(\d+)`)
	bareBudgetRE  = regexp.MustCompile(`^(\d{2,4})$`)
	cheapRE       = regexp.MustCompile(`저렴|싸게|가성비|알뜰`)
	luxuryRE      = regexp.MustCompile(`럭셔리|호화|비싸도|프리미엄`)
	nightsDaysRE  = regexp.MustCompile(`(\d+)\s*박\s*(\d+)\s*일`)
	nightsRE      = regexp.MustCompile(`(\d+)\s*박`)
	daysRE        = regexp.MustCompile(`(\d+)\s*일`)
	shortFlightRE = regexp.MustCompile(`짧게|당일|주말`)
	longFlightRE  = regexp.MustCompile(`멀어도|장거리`)
	confirmRE     = regexp.MustCompile(`결정|확정|갈래|거기로|그곳으로|가자|가고\s*싶|로 할게`)
	hangulWordRE  = regexp.MustCompile(`[가-힣]{2,}`)
)

// Group sizes outside this range are treated as noise.
const (
	minTravelers = 1
	maxTravelers = 20
)

// DefaultDestinations are the destination names recognised in user text.
var DefaultDestinations = []string{
	"도쿄", "오사카", "후쿠오카", "삿포로", "오키나와", "교토", "방콕", "다낭", "호치민", "나트랑",
	"싱가포르", "발리", "세부", "타이베이", "홍콩", "괌", "사이판", "하와이", "파리", "런던", "로마",
	"바르셀로나", "이스탄불", "뉴욕", "시드니", "제주도", "부산", "강릉", "여수", "경주", "전주",
	"속초", "통영", "산토리니", "프라하", "비엔나", "뮌헨", "취리히", "두바이", "몰디브", "호이안",
	"푸켓", "치앙마이", "쿠알라룸푸르", "카파도키아",
}

// ExtractStyles adds style tags for every style keyword in the message.
func ExtractStyles(in Input, ctx core.TravelContext) core.TravelContext {
	for _, sk := range styleKeywords {
		if !strings.Contains(in.Lower, sk.keyword) {
			continue
		}
		ctx.Preferences = appendUnique(ctx.Preferences, sk.style)
		if ctx.TravelStyle == "" {
			ctx.TravelStyle = sk.style
		}
	}
	return ctx
}

// ExtractTravelType detects package-tour versus free-travel wording.
func ExtractTravelType(in Input, ctx core.TravelContext) core.TravelContext {
	switch {
	case packageRE.MatchString(in.Lower):
		ctx.TravelType = core.TravelTypePackage
	case freeRE.MatchString(in.Lower):
		ctx.TravelType = core.TravelTypeFree
	}
	return ctx
}

// ExtractCompanions detects the companion type.
func ExtractCompanions(in Input, ctx core.TravelContext) core.TravelContext {
	switch {
	case familyRE.MatchString(in.Lower):
		ctx.Travelers = core.CompanionFamily
	case coupleRE.MatchString(in.Lower):
		ctx.Travelers = core.CompanionCouple
	case friendsRE.MatchString(in.Lower):
		ctx.Travelers = core.CompanionFriends
	case soloRE.MatchString(in.Lower):
		ctx.Travelers = core.CompanionSolo
	}
	return ctx
}

// ExtractGroupSize takes the last "N명" mention, so corrective statements
// ("처음엔 9명이었는데 4명만") win over earlier ones.
func ExtractGroupSize(in Input, ctx core.TravelContext) core.TravelContext {
	matches := headcountRE.FindAllStringSubmatch(in.Lower, -1)
	if len(matches) == 0 {
		return ctx
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil || n < minTravelers || n > maxTravelers {
		return ctx
	}
	ctx.TravelerCount = n
	return ctx
}

// ExtractTravelerDetails keeps age/grade descriptions and sums "<group> N명"
// counts ("어른 2명, 초등학생 1명" → 3). Grade numbers ("초등6학년") are not
// headcounts; only the number before 명 is summed.
func ExtractTravelerDetails(in Input, ctx core.TravelContext) core.TravelContext {
	if !detailGateRE.MatchString(in.Lower) {
		return ctx
	}
	ctx.TravelerDetails = in.Raw
	total := 0
	for _, m := range detailCountRE.FindAllStringSubmatch(in.Lower, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			total += n
		}
	}
	if total >= minTravelers && total <= maxTravelers {
		ctx.TravelerCount = total
		if total >= 3 {
			ctx.Travelers = core.CompanionFamily
		}
	}
	return ctx
}

// BudgetRule recognises three budget idioms; the first one that matches wins
// and later idioms are not consulted.
func BudgetRule(bareUnit int64) Rule {
	return func(in Input, ctx core.TravelContext) core.TravelContext {
		if m := manwonRE.FindStringSubmatch(in.Lower); m != nil {
			if n, ok := scaled(m[1], ManwonUnit); ok {
				ctx.BudgetAmount = n
			}
			return ctx
		}
		if m := budgetKeyRE.FindStringSubmatch(in.Lower); m != nil {
			if n, ok := scaled(m[1], bareUnit); ok {
				ctx.BudgetAmount = n
			}
			return ctx
		}
		if m := bareBudgetRE.FindStringSubmatch(strings.TrimSpace(in.Lower)); m != nil {
			if n, ok := scaled(m[1], bareUnit); ok {
				ctx.BudgetAmount = n
			}
		}
		return ctx
	}
}

// scaled parses digits and multiplies by unit, rejecting amounts that do not
// fit in an int64.
func scaled(digits string, unit int64) (int64, bool) {
	n, ok := positive(digits)
	if !ok || unit <= 0 || n > math.MaxInt64/unit {
		return 0, false
	}
	return n * unit, true
}

// DeriveBudgetTier recomputes the tier from the freshest amount, then applies
// explicit cheap/luxury wording from this message.
func DeriveBudgetTier(in Input, ctx core.TravelContext) core.TravelContext {
	if ctx.BudgetAmount > 0 {
		ctx.Budget = TierFor(ctx.BudgetAmount)
	}
	if cheapRE.MatchString(in.Lower) {
		ctx.Budget = core.BudgetLow
	}
	if luxuryRE.MatchString(in.Lower) {
		ctx.Budget = core.BudgetHigh
	}
	return ctx
}

// TierFor buckets an absolute budget amount.
func TierFor(amount int64) core.BudgetTier {
	switch {
	case amount <= 1000000:
		return core.BudgetLow
	case amount <= 3000000:
		return core.BudgetMedium
	default:
		return core.BudgetHigh
	}
}

// DeriveCompanionFromCount treats groups of three or more without a stated
// companion type as a family trip.
func DeriveCompanionFromCount(_ Input, ctx core.TravelContext) core.TravelContext {
	if ctx.Travelers == "" && ctx.TravelerCount >= 3 {
		ctx.Travelers = core.CompanionFamily
	}
	return ctx
}

// ExtractDuration keeps the most specific duration phrase ("3박4일" > "3박" > "8일").
func ExtractDuration(in Input, ctx core.TravelContext) core.TravelContext {
	for _, re := range []*regexp.Regexp{nightsDaysRE, nightsRE, daysRE} {
		if m := re.FindString(in.Lower); m != "" {
			ctx.Duration = m
			break
		}
	}
	return ctx
}

// ExtractFlightTime records short/long haul tolerance.
func ExtractFlightTime(in Input, ctx core.TravelContext) core.TravelContext {
	if shortFlightRE.MatchString(in.Lower) {
		ctx.FlightTime = "short"
	}
	if longFlightRE.MatchString(in.Lower) {
		ctx.FlightTime = "long"
	}
	return ctx
}

// DestinationRule detects explicit destination names. An established
// destination is only replaced when the same message also carries an explicit
// confirmation ("도쿄로 결정"); a bare confirmation keeps the previous one.
func DestinationRule(names []string) Rule {
	return func(in Input, ctx core.TravelContext) core.TravelContext {
		mentioned := ""
		for _, name := range names {
			if strings.Contains(in.Lower, strings.ToLower(name)) {
				mentioned = name
				break
			}
		}
		if mentioned == "" {
			return ctx
		}
		if ctx.Destination == "" || confirmRE.MatchString(in.Lower) {
			ctx.Destination = mentioned
		}
		return ctx
	}
}

// IsConfirmation reports whether text carries a confirm/decide phrase.
func IsConfirmation(text string) bool {
	return confirmRE.MatchString(strings.ToLower(text))
}

// ExtractKeywords collects Hangul tokens of two or more syllables.
func ExtractKeywords(in Input, ctx core.TravelContext) core.TravelContext {
	for _, kw := range hangulWordRE.FindAllString(in.Raw, -1) {
		ctx.Keywords = appendUnique(ctx.Keywords, kw)
	}
	return ctx
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	out := make([]string, len(list), len(list)+1)
	copy(out, list)
	return append(out, v)
}

func positive(digits string) (int64, bool) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
