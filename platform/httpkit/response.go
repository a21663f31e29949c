// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"crm_portal_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// Envelope is the standard response format for every endpoint.
// Consumers rely on this shape only, never on transport details.
type Envelope struct {
	Data      interface{} `json:"data,omitempty"`
	IsSuccess bool        `json:"isSuccess"`
	Message   string      `json:"message,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// JSON sends an enveloped response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, Envelope{Data: payload, IsSuccess: status < http.StatusBadRequest})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, Envelope{Data: payload, IsSuccess: true})
}

// Created sends a 201 Created response with the given payload.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, Envelope{Data: payload, IsSuccess: true})
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, Envelope{IsSuccess: false, Message: message, Details: details})
}

// HandleError maps domain errors to HTTP responses.
// If the error is a typed *apperr.Error, it uses the error's Kind to determine
// the HTTP status code. Otherwise, it defaults to 400 Bad Request.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		c.JSON(domainErr.HTTPStatus(), Envelope{
			IsSuccess: false,
			Message:   domainErr.Message,
			Details:   domainErr.Details,
		})
		return true
	}

	// Fallback for non-typed errors
	c.JSON(http.StatusBadRequest, Envelope{IsSuccess: false, Message: err.Error()})
	return true
}
