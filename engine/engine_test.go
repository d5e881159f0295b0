package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/fallback"
	"github.com/namancryu/TravelPMS/internal/testutil"
	"github.com/namancryu/TravelPMS/model"
	"github.com/namancryu/TravelPMS/provider"
	"github.com/namancryu/TravelPMS/session"
)

func familyBeachSession(id string) *core.Session {
	return testutil.NewSessionBuilder(id).
		State(core.StateDeepening).
		Turns(1).
		Context(core.TravelContext{
			Preferences:   []string{"beach"},
			TravelStyle:   "beach",
			Travelers:     core.CompanionFamily,
			TravelerCount: 4,
		}).
		User("가족 4명, 바다 여행 좋아해요").
		Assistant("좋아요!").
		Build()
}

func TestProcessTurn_EndToEndWithoutProviders(t *testing.T) {
	eng := New()
	ctx := context.Background()

	first := eng.ProcessTurn(ctx, "s1", "가족 4명, 바다 여행 좋아해요", nil)

	assert.Equal(t, 4, first.Context.TravelerCount)
	assert.Contains(t, first.Context.Preferences, "beach")
	assert.Contains(t, []core.ConversationState{core.StateGathering, core.StateDeepening}, first.State)
	assert.Equal(t, provider.MockName, first.Provider)
	assert.Equal(t, 1, first.MessageCount)
	assert.NotEmpty(t, first.Response)
	assert.Nil(t, first.Recommendations)

	second := eng.ProcessTurn(ctx, "s1", "예산 800만원", nil)

	assert.Equal(t, int64(8000000), second.Context.BudgetAmount)
	assert.Equal(t, core.StateRecommending, second.State)
	assert.Equal(t, provider.MockName, second.Provider)
	assert.Equal(t, 2, second.MessageCount)
	require.NotEmpty(t, second.Recommendations)
	for _, r := range second.Recommendations {
		assert.LessOrEqual(t, r.EstimatedCost, int64(1800000), r.ID)
	}

	snap, err := eng.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, snap.History, 4)
	assert.Equal(t, core.RoleUser, snap.History[2].Role)
	assert.Equal(t, "예산 800만원", snap.History[2].Content)
	assert.Equal(t, second.Recommendations, snap.Recommendations)
}

func TestProcessTurn_StructuredProviderAnswer(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	require.NoError(t, store.Save(ctx, familyBeachSession("s1")))

	gemini := model.NewMockProvider("gemini").AddResponse("추천드려요!\n```json\n" +
		`{"recommendations":[` +
		`{"id":"greece-santorini","name":"산토리니","estimatedCost":3000000,"currency":"EUR","matchScore":91},` +
		`{"id":"vietnam-danang","estimatedCost":700000}]}` +
		"\n```")
	eng := New(WithSessionStore(store), WithOrchestrator(testutil.Orchestrator(gemini)))

	res := eng.ProcessTurn(ctx, "s1", "예산 800만원", nil)

	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, core.StateRecommending, res.State)
	assert.Equal(t, "추천드려요!", res.Response)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, int64(1800000), res.Recommendations[0].EstimatedCost)
	assert.Equal(t, "다낭", res.Recommendations[1].Name)
	assert.Equal(t, "🇻🇳", res.Recommendations[1].Flag)

	prompts := gemini.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "## 현재 대화 상태: RECOMMENDING")
	assert.Contains(t, prompts[0], "1인당 예산: 2,000,000원")
	assert.Contains(t, prompts[0], "이전 대화:\n사용자: 가족 4명, 바다 여행 좋아해요\nAI: 좋아요!")
	assert.Contains(t, prompts[0], "사용자: 예산 800만원\n\nAI:")
}

func TestProcessTurn_UnstructuredRecommendationFallsBack(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	require.NoError(t, store.Save(ctx, familyBeachSession("s1")))

	groq := model.NewMockProvider("groq").AddResponse("발리 어떠세요? 정말 좋아요!")
	var causes []string
	cm := NewCallbackManager()
	cm.RegisterCallback(NewFunctionCallback(CallbackOnFallback, func(_ context.Context, cc *CallbackContext) error {
		causes = append(causes, cc.Cause)
		return nil
	}))
	eng := New(WithSessionStore(store), WithOrchestrator(testutil.Orchestrator(groq)), WithCallbacks(cm))

	res := eng.ProcessTurn(ctx, "s1", "예산 800만원", nil)

	assert.Equal(t, provider.MockName, res.Provider)
	assert.Equal(t, core.StateRecommending, res.State)
	require.Len(t, res.Recommendations, 3)
	assert.Contains(t, res.Response, "🥇")
	assert.Equal(t, []string{CauseUnstructured}, causes)
}

func TestProcessTurn_ProviderAnswerOutsideRecommending(t *testing.T) {
	groq := model.NewMockProvider("groq").AddResponse("안녕하세요! 어떤 여행을 원하세요?")
	eng := New(WithOrchestrator(testutil.Orchestrator(groq)))

	res := eng.ProcessTurn(context.Background(), "s1", "안녕하세요", nil)

	assert.Equal(t, "groq", res.Provider)
	assert.Equal(t, core.StateGathering, res.State)
	assert.Equal(t, "안녕하세요! 어떤 여행을 원하세요?", res.Response)
	assert.Nil(t, res.Recommendations)
}

func TestProcessTurn_QuotaFallsThroughToNextProvider(t *testing.T) {
	quota := model.NewProviderError("gemini", 429, errors.New("RESOURCE_EXHAUSTED"))
	gemini := model.NewMockProvider("gemini").AddError(quota)
	grok := model.NewMockProvider("grok").AddResponse("여행 스타일을 알려주세요 😊")
	eng := New(WithOrchestrator(testutil.Orchestrator(gemini, grok)))

	res := eng.ProcessTurn(context.Background(), "s1", "여행 가고 싶어요", nil)

	assert.Equal(t, "grok", res.Provider)
	assert.Equal(t, 2, gemini.Calls())
	assert.Equal(t, 1, grok.Calls())
}

func TestProcessTurn_StickyRecommending(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	sess := testutil.NewSessionBuilder("s1").State(core.StateRecommending).Turns(3).Build()
	require.NoError(t, store.Save(ctx, sess))
	eng := New(WithSessionStore(store))

	res := eng.ProcessTurn(ctx, "s1", "음...", nil)

	assert.Equal(t, core.StateRecommending, res.State)
	assert.Equal(t, 4, res.MessageCount)
}

func TestProcessTurn_ConfirmationSelects(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	sess := testutil.NewSessionBuilder("s1").
		State(core.StateRecommending).
		Turns(3).
		Context(core.TravelContext{Travelers: core.CompanionCouple, Duration: "4박5일"}).
		Recommendations(core.Recommendation{ID: "vietnam-danang", Name: "다낭", Flag: "🇻🇳", EstimatedCost: 700000}).
		Build()
	require.NoError(t, store.Save(ctx, sess))
	eng := New(WithSessionStore(store))

	res := eng.ProcessTurn(ctx, "s1", "다낭으로 할게요", nil)

	assert.Equal(t, core.StateSelecting, res.State)
	assert.Equal(t, "다낭", res.Context.Destination)
	assert.Contains(t, res.Response, "다낭")
	assert.Nil(t, res.Recommendations)

	snap, err := eng.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, snap.Recommendations, 1)
}

func TestProcessTurn_UserSettings(t *testing.T) {
	p := model.NewMockProvider("gemini").AddResponse("반가워요!")
	eng := New(WithOrchestrator(testutil.Orchestrator(p)))

	eng.ProcessTurn(context.Background(), "s1", "안녕", &core.UserSettings{HomeCity: "부산"})

	snap, err := eng.Session(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "부산", snap.HomeCity)
	assert.Equal(t, DefaultHomeCountry, snap.HomeCountry)
	assert.Contains(t, p.Prompts()[0], "거주 도시(부산)는 절대 여행지로 추천하지 마세요")
}

func TestProcessTurn_RecoversPanics(t *testing.T) {
	cm := NewCallbackManager()
	cm.RegisterCallback(NewFunctionCallback(CallbackBeforeProvider, func(context.Context, *CallbackContext) error {
		panic("boom")
	}))
	eng := New(WithCallbacks(cm))

	var res core.TurnResult
	require.NotPanics(t, func() {
		res = eng.ProcessTurn(context.Background(), "s1", "안녕", nil)
	})

	assert.Equal(t, recoveryMessage, res.Response)
	assert.True(t, res.State.Valid())
	assert.Equal(t, provider.MockName, res.Provider)
}

func TestProcessTurn_LockedSessionStillAnswers(t *testing.T) {
	store := session.NewInMemoryStore()
	unlock, err := store.Lock(context.Background(), "s1")
	require.NoError(t, err)
	defer unlock()

	eng := New(WithSessionStore(store), WithTurnTimeout(20*time.Millisecond))
	res := eng.ProcessTurn(context.Background(), "s1", "바다 가고 싶어요", nil)

	assert.NotEmpty(t, res.Response)
	assert.Equal(t, 1, res.MessageCount)
	assert.Equal(t, provider.MockName, res.Provider)

	snap, err := store.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.MessageCount)
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingProvider) Info() model.Info { return model.Info{Name: "slow", Vendor: "mock"} }

func TestProcessTurn_SlowProviderTimesOut(t *testing.T) {
	eng := New(WithOrchestrator(testutil.Orchestrator(blockingProvider{})), WithTurnTimeout(30*time.Millisecond))

	start := time.Now()
	res := eng.ProcessTurn(context.Background(), "s1", "바다 가고 싶어요", nil)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, provider.MockName, res.Provider)
	assert.NotEmpty(t, res.Response)
	assert.True(t, res.State.Valid())
}

func TestProcessTurn_SerializesSameSession(t *testing.T) {
	eng := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			eng.ProcessTurn(context.Background(), "s1", fmt.Sprintf("메시지 %d", i), nil)
		}(i)
	}
	wg.Wait()

	snap, err := eng.Session(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 10, snap.MessageCount)
	assert.Len(t, snap.History, 20)
}

func TestProcessTurn_FallbackIsDeterministic(t *testing.T) {
	run := func() []core.TurnResult {
		eng := New()
		return []core.TurnResult{
			eng.ProcessTurn(context.Background(), "s1", "친구랑 맛집 여행", nil),
			eng.ProcessTurn(context.Background(), "s1", "예산 200만원, 3박4일", nil),
		}
	}
	a, b := run(), run()
	for i := range a {
		assert.Equal(t, a[i].Response, b[i].Response)
		assert.Equal(t, a[i].State, b[i].State)
		assert.Equal(t, a[i].Recommendations, b[i].Recommendations)
		assert.Equal(t, provider.MockName, a[i].Provider)
	}
}

func TestProcessTurn_StateChangeVeto(t *testing.T) {
	cm := NewCallbackManager()
	cm.RegisterCallback(NewStateTransitionCallback(func(from, to core.ConversationState) error {
		if to == core.StateDeepening {
			return errors.New("not yet")
		}
		return nil
	}))
	eng := New(WithCallbacks(cm))

	res := eng.ProcessTurn(context.Background(), "s1", "바다 좋아해요", nil)

	assert.Equal(t, core.StateGreeting, res.State)
	assert.Equal(t, fallback.Greeting, res.Response)
}

func TestSelectDestination(t *testing.T) {
	ctx := context.Background()
	store := session.NewInMemoryStore()
	sess := testutil.NewSessionBuilder("s1").
		State(core.StateRecommending).
		Recommendations(core.Recommendation{ID: "peru-cusco", Name: "쿠스코", Flag: "🇵🇪", EstimatedCost: 1700000}).
		Build()
	require.NoError(t, store.Save(ctx, sess))
	eng := New(WithSessionStore(store))

	t.Run("catalog destination", func(t *testing.T) {
		sel, err := eng.SelectDestination(ctx, "s1", "japan-okinawa")
		require.NoError(t, err)
		require.NotNil(t, sel.Destination)
		assert.Equal(t, "오키나와", sel.Destination.Name)
		assert.Equal(t, core.StateComplete, sel.State)
		assert.Equal(t, "오키나와", sel.Context.Destination)
	})

	t.Run("recommended destination outside catalog", func(t *testing.T) {
		sel, err := eng.SelectDestination(ctx, "s1", "peru-cusco")
		require.NoError(t, err)
		require.NotNil(t, sel.Destination)
		assert.Equal(t, "쿠스코", sel.Destination.Name)
		assert.Equal(t, int64(1700000), sel.Destination.AvgCost)
	})

	t.Run("unknown destination", func(t *testing.T) {
		sel, err := eng.SelectDestination(ctx, "s1", "atlantis")
		require.NoError(t, err)
		assert.Nil(t, sel.Destination)
		assert.Equal(t, core.StateComplete, sel.State)
	})

	snap, err := eng.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, core.StateComplete, snap.State)
}

func TestProviderStatus(t *testing.T) {
	eng := New()
	assert.Empty(t, eng.ProviderStatus())
	assert.Equal(t, provider.MockName, eng.ActiveProvider())

	p := model.NewMockProvider("gemini")
	eng = New(WithOrchestrator(testutil.Orchestrator(p)))
	require.Len(t, eng.ProviderStatus(), 1)
	assert.True(t, eng.ProviderStatus()[0].Enabled)
	assert.Equal(t, "gemini", eng.ActiveProvider())
}
