package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/primegen/internal/bignum"
	"github.com/agbru/primegen/internal/service"
	"github.com/agbru/primegen/internal/sieve"
)

// maxQueryDigits bounds every numeric query parameter before parsing.
const maxQueryDigits = 100_000

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handlePrimes answers GET /primes?limit=<n>[&threads=<t>][&count_only=true]
// with the sorted primes below limit.
func (s *Server) handlePrimes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, threads, countOnly, err := parsePrimesParams(r)
	if err != nil {
		s.writeParamError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	res, err := s.service.Primes(ctx, limit, threads)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := PrimesResponse{
		Limit:    res.Limit,
		Threads:  res.Threads,
		Count:    len(res.Primes),
		Duration: res.Duration.String(),
		Cached:   res.Cached,
	}
	if !countOnly {
		resp.Primes = res.Primes
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// handleArith answers GET /arith?op=<op>&a=<n>[&b=<n>].
func (s *Server) handleArith(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	op, a, b, err := parseArithParams(r)
	if err != nil {
		s.writeParamError(w, err)
		return
	}

	start := time.Now()
	result, err := s.service.Arith(op, a, b)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := ArithResponse{
		Op:       op,
		A:        a.String(),
		Result:   result,
		Duration: time.Since(start).String(),
	}
	if service.Ops[op] == 2 {
		resp.B = b.String()
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

func parseNat(r *http.Request, name string) (bignum.Nat, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return bignum.Nat{}, ParamError{
			Message:    fmt.Sprintf("Missing '%s' parameter", name),
			StatusCode: http.StatusBadRequest,
		}
	}
	if len(raw) > maxQueryDigits {
		return bignum.Nat{}, ParamError{
			Message:    fmt.Sprintf("Parameter '%s' is too long", name),
			StatusCode: http.StatusRequestEntityTooLarge,
		}
	}
	v, err := bignum.Parse(raw)
	if err != nil {
		return bignum.Nat{}, ParamError{
			Message:    fmt.Sprintf("Invalid '%s' parameter: must be a non-negative decimal integer", name),
			StatusCode: http.StatusBadRequest,
		}
	}
	return v, nil
}

// parsePrimesParams extracts the /primes parameters.
//
// Returns:
//   - limit: The exclusive upper bound.
//   - threads: The requested worker count, or 0 for the service default.
//   - countOnly: Whether the list of primes is omitted from the response.
//   - err: A ParamError if validation fails, nil otherwise.
func parsePrimesParams(r *http.Request) (limit bignum.Nat, threads int, countOnly bool, err error) {
	limit, err = parseNat(r, "limit")
	if err != nil {
		return bignum.Nat{}, 0, false, err
	}
	if t := r.URL.Query().Get("threads"); t != "" {
		threads, err = strconv.Atoi(t)
		if err != nil || threads < 1 {
			return bignum.Nat{}, 0, false, ParamError{
				Message:    "Invalid 'threads' parameter: must be a positive integer",
				StatusCode: http.StatusBadRequest,
			}
		}
	}
	if c := r.URL.Query().Get("count_only"); c != "" {
		countOnly, err = strconv.ParseBool(c)
		if err != nil {
			return bignum.Nat{}, 0, false, ParamError{
				Message:    "Invalid 'count_only' parameter: must be a boolean",
				StatusCode: http.StatusBadRequest,
			}
		}
	}
	return limit, threads, countOnly, nil
}

// parseArithParams extracts the /arith parameters. b is required only for
// binary operations and is zero otherwise.
func parseArithParams(r *http.Request) (op string, a, b bignum.Nat, err error) {
	op = strings.ToLower(r.URL.Query().Get("op"))
	arity, ok := service.Ops[op]
	if !ok {
		return "", a, b, ParamError{
			Message:    fmt.Sprintf("Invalid 'op' parameter: %q", op),
			StatusCode: http.StatusBadRequest,
		}
	}
	if a, err = parseNat(r, "a"); err != nil {
		return "", a, b, err
	}
	b = bignum.Zero()
	if arity == 2 {
		if b, err = parseNat(r, "b"); err != nil {
			return "", a, b, err
		}
	}
	return op, a, b, nil
}

func (s *Server) writeParamError(w http.ResponseWriter, err error) {
	var pe ParamError
	if errors.As(err, &pe) {
		s.writeErrorResponse(w, pe.StatusCode, pe.Message)
		return
	}
	s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
}

// writeServiceError maps service errors to HTTP statuses: bad input is 400,
// a request over the size limits is 422, a timeout is 504.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMaxValueExceeded):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("%v. The limit prevents resource exhaustion.", err))
	case errors.Is(err, service.ErrOperandTooLarge):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case sieve.IsConfigError(err),
		errors.Is(err, bignum.ErrUnderflow),
		errors.Is(err, bignum.ErrDivideByZero),
		errors.Is(err, service.ErrShiftTooLarge),
		errors.Is(err, service.ErrUnknownOp):
		s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		s.logger.Error("request failed", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errResp := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	s.writeJSONResponse(w, statusCode, errResp)
}
