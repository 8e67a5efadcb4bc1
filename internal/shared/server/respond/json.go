package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/pagination"
)

// Envelope is the response body shape for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// ListEnvelope adds pagination metadata to a list response.
type ListEnvelope struct {
	Success     bool `json:"success"`
	Data        any  `json:"data"`
	Count       int  `json:"count"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
}

// JSON writes a success envelope with the given status.
func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, data any) {
	JSON(c, http.StatusOK, data)
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, data any) {
	JSON(c, http.StatusCreated, data)
}

// Message writes a success envelope carrying only a message.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

// List writes a paginated success envelope. count is len(items).
func List(c *gin.Context, items any, count, total int, page pagination.Params) {
	c.JSON(http.StatusOK, ListEnvelope{
		Success:     true,
		Data:        items,
		Count:       count,
		Total:       total,
		TotalPages:  page.TotalPages(total),
		CurrentPage: page.Page,
	})
}
