package net

import (
	"net/http"

	perr "fieldops/internal/platform/errors"
)

// Wire is the transport-neutral reply envelope
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// wire stamps the status fields every envelope carries
func wire(status int, reqID string) Wire {
	return Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
	}
}

// OK builds a 200 envelope
func OK(data any, reqID string) (int, Wire) {
	w := wire(http.StatusOK, reqID)
	w.Data = data
	return http.StatusOK, w
}

// Created builds a 201 envelope
func Created(data any, reqID string) (int, Wire) {
	w := wire(http.StatusCreated, reqID)
	w.Data = data
	return http.StatusCreated, w
}

// NoContent builds a 204 envelope
func NoContent(reqID string) (int, Wire) {
	return http.StatusNoContent, wire(http.StatusNoContent, reqID)
}

// Error builds an error envelope, falling back to OK for a nil error
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return OK(nil, reqID)
	}
	status := perr.HTTPStatus(err)
	coded := perr.WireFrom(err)

	w := wire(status, reqID)
	w.Code = coded.Code
	w.Error = coded.Message
	return status, w
}
