package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/market"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

const (
	apiVersion  = "2.0"
	errorDomain = "fantasy-trade-market"

	internalMessage = "internal server error"
)

// envelope follows the Google JSON style guide: exactly one of data or error.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Status  string       `json:"status"`
	Errors  []errorCause `json:"errors,omitempty"`
}

type errorCause struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

type errorRule struct {
	targets []error
	mapped  mappedError
}

// errorRules is checked top to bottom; the first matching target wins.
var errorRules = []errorRule{
	{[]error{usecase.ErrInvalidInput}, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{[]error{usecase.ErrNotFound}, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{[]error{usecase.ErrUnauthorized}, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{[]error{usecase.ErrNotLinked}, mappedError{http.StatusPreconditionFailed, "providerNotLinked", "FAILED_PRECONDITION"}},
	{[]error{usecase.ErrRefreshFailed, usecase.ErrTokenExpired}, mappedError{http.StatusPreconditionFailed, "providerRelinkRequired", "FAILED_PRECONDITION"}},
	{[]error{
		usecase.ErrBusinessRule,
		market.ErrDuplicateActiveListing,
		market.ErrDuplicatePendingOffer,
		market.ErrInvalidTransition,
	}, mappedError{http.StatusConflict, "businessRule", "ABORTED"}},
	{[]error{usecase.ErrProvider}, mappedError{http.StatusBadGateway, "providerError", "UNAVAILABLE"}},
	{[]error{usecase.ErrDependencyUnavailable}, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

var internalError = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}

func mapError(err error) mappedError {
	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return rule.mapped
			}
		}
	}
	return internalError
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeEnvelope(ctx, w, status, envelope{APIVersion: apiVersion, Data: data})
}

// writeError never echoes the message of an unmapped error.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	message := internalMessage
	if mapped != internalError {
		message = err.Error()
	}
	writeFailure(ctx, w, mapped, message)
}

func writeFailure(ctx context.Context, w http.ResponseWriter, mapped mappedError, message string) {
	writeEnvelope(ctx, w, mapped.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors:  []errorCause{{Domain: errorDomain, Reason: mapped.Reason, Message: message}},
		},
	})
}

func writeEnvelope(_ context.Context, w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(body)
}
