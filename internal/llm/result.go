package llm

// Category classifies a failed provider call.
type Category string

const (
	CategoryAuth           Category = "auth"
	CategoryRateLimit      Category = "rate_limit"
	CategoryNetwork        Category = "network"
	CategoryTimeout        Category = "timeout"
	CategoryCanceled       Category = "canceled"
	CategoryServer         Category = "server"
	CategoryInvalidRequest Category = "invalid_request"
	CategoryEmptyResponse  Category = "empty_response"
	CategoryUnknown        Category = "unknown"
)

// Error is a normalized provider failure.
type Error struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Result is either a response text (Err == nil) or a failure.
type Result struct {
	Text string
	Err  *Error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Success returns a successful result.
func Success(text string) Result {
	return Result{Text: text}
}

// Failure returns a failed result.
func Failure(category Category, message string) Result {
	if message == "" {
		message = string(category)
	}
	return Result{Err: &Error{Category: category, Message: message}}
}
