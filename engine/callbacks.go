package engine

import (
	"context"
	"sync"

	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/logging"
)

// CallbackType identifies a point in the turn lifecycle where callbacks run.
//
// Callbacks hook into turn processing without touching the engine itself.
// Available callback types:
//   - OnStateChange: before a new dialogue state is committed
//   - BeforeProvider/AfterProvider: around the provider chain
//   - OnFallback: when the fallback generator answers
//   - AfterTurn: once the turn result is final
//
// Callbacks are executed synchronously on the turn goroutine while the
// session lock is held, so they must be fast. Only OnStateChange and
// BeforeProvider can change the outcome by returning an error; errors from
// the other types are logged and ignored.
type CallbackType string

const (
	// CallbackOnStateChange runs when the computed state differs from the
	// stored one. An error vetoes the transition and the previous state is
	// kept. Use for policy checks such as pinning a session in GATHERING.
	CallbackOnStateChange CallbackType = "on_state_change"

	// CallbackBeforeProvider runs with the rendered prompt before the
	// provider chain is called. An error skips the providers and the turn is
	// answered by the fallback generator. Use for quota gates or prompt
	// auditing.
	CallbackBeforeProvider CallbackType = "before_provider"

	// CallbackAfterProvider runs after a provider produced an answer, before
	// post-processing. Use for response logging or per-provider metrics.
	CallbackAfterProvider CallbackType = "after_provider"

	// CallbackOnFallback runs whenever the fallback generator answers a turn.
	// Cause names the trigger. Use for alerting on provider outages.
	CallbackOnFallback CallbackType = "on_fallback"

	// CallbackAfterTurn runs once the turn result is final and the session
	// has been saved. Use for analytics or pushing updates to clients.
	CallbackAfterTurn CallbackType = "after_turn"
)

// CallbackContext carries the turn details visible to callbacks. Fields that
// do not apply to a callback type are zero.
type CallbackContext struct {
	SessionID     string
	TurnID        string
	Message       string
	Prompt        string
	Response      string
	Provider      string
	PreviousState core.ConversationState
	State         core.ConversationState
	Context       core.TravelContext
	// Cause explains a fallback: "providers_exhausted", "unstructured",
	// "callback", "prompt" or "empty_response".
	Cause string
	// Metadata is free-form storage shared by callbacks of one turn.
	Metadata map[string]any
}

// Callback is a turn lifecycle hook.
type Callback interface {
	Type() CallbackType
	Execute(ctx context.Context, cc *CallbackContext) error
}

// FunctionCallback adapts a function to the Callback interface.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, cc *CallbackContext) error
}

// NewFunctionCallback creates a callback of the given type.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, cc *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{callbackType: callbackType, fn: fn}
}

// Type implements Callback.
func (c *FunctionCallback) Type() CallbackType { return c.callbackType }

// Execute implements Callback.
func (c *FunctionCallback) Execute(ctx context.Context, cc *CallbackContext) error {
	return c.fn(ctx, cc)
}

// CallbackManager stores callbacks by type. It is safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{callbacks: make(map[CallbackType][]Callback)}
}

// RegisterCallback appends cb to the callbacks of its type.
func (cm *CallbackManager) RegisterCallback(cb Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks[cb.Type()] = append(cm.callbacks[cb.Type()], cb)
}

// ExecuteCallbacks runs the callbacks of one type in registration order and
// stops at the first error. A nil manager runs nothing.
func (cm *CallbackManager) ExecuteCallbacks(ctx context.Context, t CallbackType, cc *CallbackContext) error {
	if cm == nil {
		return nil
	}
	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[t]...)
	cm.mu.RUnlock()

	for _, cb := range callbacks {
		if err := cb.Execute(ctx, cc); err != nil {
			return err
		}
	}
	return nil
}

// LoggingCallback writes one debug line per execution.
type LoggingCallback struct {
	callbackType CallbackType
	logger       logging.Logger
}

// NewLoggingCallback creates a logging callback for t.
func NewLoggingCallback(t CallbackType, logger logging.Logger) *LoggingCallback {
	return &LoggingCallback{callbackType: t, logger: logger}
}

// Type implements Callback.
func (c *LoggingCallback) Type() CallbackType { return c.callbackType }

// Execute implements Callback.
func (c *LoggingCallback) Execute(_ context.Context, cc *CallbackContext) error {
	if c.logger != nil {
		c.logger.Debug("turn callback",
			"type", string(c.callbackType),
			"session_id", cc.SessionID,
			"turn_id", cc.TurnID,
			"state", cc.State.String(),
			"provider", cc.Provider,
			"cause", cc.Cause)
	}
	return nil
}

// StateTransitionCallback validates state changes.
type StateTransitionCallback struct {
	validator func(from, to core.ConversationState) error
}

// NewStateTransitionCallback creates an on_state_change callback from validator.
func NewStateTransitionCallback(validator func(from, to core.ConversationState) error) *StateTransitionCallback {
	return &StateTransitionCallback{validator: validator}
}

// Type implements Callback.
func (c *StateTransitionCallback) Type() CallbackType { return CallbackOnStateChange }

// Execute implements Callback.
func (c *StateTransitionCallback) Execute(_ context.Context, cc *CallbackContext) error {
	if c.validator == nil {
		return nil
	}
	return c.validator(cc.PreviousState, cc.State)
}
