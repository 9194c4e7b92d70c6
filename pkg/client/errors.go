package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass represents a classification of request errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassUnexpected represents non-2xx statuses outside 4xx/5xx.
	ErrorClassUnexpected ErrorClass = "unexpected"
)

// ErrEmptyURL is returned when a request is attempted without a URL.
var ErrEmptyURL = errors.New("request url is empty")

// APIError represents a failed API request with additional context.
type APIError struct {
	URL        string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API %s error (status %d) for %s: %s: %v",
			e.ErrorClass, e.StatusCode, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("API %s error (status %d) for %s: %s",
		e.ErrorClass, e.StatusCode, e.URL, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx status code to an error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}

// isSuccess reports whether a status code is 2xx.
func isSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// ClassOf returns the error class of err, or "" if it is not an APIError.
func ClassOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ""
}
