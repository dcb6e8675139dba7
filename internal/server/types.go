package server

// PrimesResponse is the JSON body of GET /primes.
type PrimesResponse struct {
	// Limit is the exclusive upper bound, in decimal.
	Limit string `json:"limit"`
	// Threads is the number of workers used.
	Threads int `json:"threads"`
	// Count is the number of primes below Limit.
	Count int `json:"count"`
	// Primes lists the primes in ascending order. It is omitted when the
	// request asked for the count only.
	Primes []string `json:"primes,omitempty"`
	// Duration is the formatted sieve time.
	Duration string `json:"duration"`
	// Cached reports whether the result came from the service cache.
	Cached bool `json:"cached"`
}

// ArithResponse is the JSON body of GET /arith.
type ArithResponse struct {
	Op       string `json:"op"`
	A        string `json:"a"`
	B        string `json:"b,omitempty"`
	Result   string `json:"result"`
	Duration string `json:"duration"`
}

// ErrorResponse represents the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the short error code or status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
}

// ParamError is a query parameter error carrying its HTTP status.
type ParamError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e ParamError) Error() string {
	return e.Message
}
