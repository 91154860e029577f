package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/procure-ai/internal/service/types"
)

// ErrorResponse 统一错误响应
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OK 200 响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest 400 响应
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: message})
}

// Unauthorized 401 响应
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: message})
}

// Error 按错误类型映射状态码
// 未识别的错误一律 500，细节只进日志不出响应
func Error(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var validation *types.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Details: validation.Problems,
		})
		return
	}

	var limit *types.CartLimitError
	if errors.As(err, &limit) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity_out_of_range", Message: err.Error()})
		return
	}

	if errors.Is(err, types.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty_cart", Message: err.Error()})
		return
	}

	var notFound *types.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
		return
	}

	var duplicate *types.DuplicateItemError
	if errors.As(err, &duplicate) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "duplicate_item",
			Message: err.Error(),
			Details: gin.H{"duplicates": duplicate.Duplicates},
		})
		return
	}

	log.Printf("Error: %v", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	})
}
