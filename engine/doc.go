// Package engine implements turn processing for the travel consultant.
//
// The Engine is the coordination point between the HTTP layer and the
// consulting components. It owns no domain rules of its own; it sequences
// them and guarantees that every turn produces an answer.
//
// # Turn Flow
//
//	┌──────────────────────────────────────────────────────────┐
//	│ SessionStore.Lock + GetOrCreate                           │
//	├──────────────────────────────────────────────────────────┤
//	│ messageCount++ · user settings · extract.Extractor        │
//	│ policy.Advance (sticky forward) · confirm → SELECTING     │
//	├──────────────────────────────────────────────────────────┤
//	│ PromptBuilder → provider.Orchestrator                     │
//	│   ├─ answer  → postprocess.Processor                      │
//	│   │             └─ RECOMMENDING without block → fallback  │
//	│   └─ no answer → fallback.Generator                       │
//	├──────────────────────────────────────────────────────────┤
//	│ history · recommendations (wholesale) · SessionStore.Save │
//	└──────────────────────────────────────────────────────────┘
//
// # Totality
//
// ProcessTurn has no error return. Provider failures end in the fallback
// generator, store failures degrade to an unpersisted answer, a turn that
// exceeds Config.TurnTimeout skips the remaining providers, and panics are
// recovered into an apology reply. The reported provider is "mock" whenever
// the fallback generator wrote the answer.
//
// # Callbacks
//
// A CallbackManager hooks into state changes, the provider call, fallback
// activation, and turn completion. on_state_change callbacks may veto a
// transition; before_provider callbacks may skip the providers.
//
// # Example
//
//	eng := engine.New(
//	    engine.WithOrchestrator(orch),
//	    engine.WithLogger(logger),
//	)
//	res := eng.ProcessTurn(ctx, "session-1", "가족 4명, 바다 여행 좋아해요", nil)
//	fmt.Println(res.State, res.Response)
package engine
