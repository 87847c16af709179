package client

import "sync"

// DefaultLoadingMessage is shown when Start is called without a message
const DefaultLoadingMessage = "Cargando..."

const defaultOperationError = "Error en la operación"

// LoadingState is the progress of one keyed operation
type LoadingState struct {
	IsLoading bool
	Message   string
	Error     string
}

// LoadingRegistry tracks named in-flight operations so pages can show
// per-action spinners and inline errors.
type LoadingRegistry struct {
	mu     sync.RWMutex
	states map[string]LoadingState
}

// NewLoadingRegistry returns an empty registry
func NewLoadingRegistry() *LoadingRegistry {
	return &LoadingRegistry{states: make(map[string]LoadingState)}
}

// Start marks key as loading
func (r *LoadingRegistry) Start(key, message string) {
	if message == "" {
		message = DefaultLoadingMessage
	}
	r.mu.Lock()
	r.states[key] = LoadingState{IsLoading: true, Message: message}
	r.mu.Unlock()
}

// Stop marks key as done, recording err when not nil
func (r *LoadingRegistry) Stop(key string, err error) {
	state := LoadingState{}
	if err != nil {
		state.Error = ErrorMessage(err)
	}
	r.mu.Lock()
	r.states[key] = state
	r.mu.Unlock()
}

// Get returns the state of key; unknown keys are idle
func (r *LoadingRegistry) Get(key string) LoadingState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[key]
}

// With runs fn between Start and Stop and returns its error
func (r *LoadingRegistry) With(key, message string, fn func() error) error {
	r.Start(key, message)
	err := fn()
	r.Stop(key, err)
	return err
}

// ErrorMessage is the user facing text of err: the server's message when it
// came from a route, the error text otherwise.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultOperationError
}
