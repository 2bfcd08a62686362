package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorNoAuthenticationConfigured = "FMC_NO_AUTHENTICATION_CONFIGURED"
	ErrorUnresolvedHost             = "FMC_UNRESOLVED_HOST"
	ErrorMissingTenantScope         = "FMC_MISSING_TENANT_SCOPE"
	ErrorUnknownOperation           = "FMC_UNKNOWN_OPERATION"
	ErrorUnsupportedMethod          = "FMC_UNSUPPORTED_METHOD"
	ErrorInvalidConfig              = "FMC_INVALID_CONFIG"
	ErrorMissingCredentialHeader    = "FMC_MISSING_CREDENTIAL_HEADER"
	ErrorMalformedTenantID          = "FMC_MALFORMED_TENANT_ID"
	ErrorMalformedTimestamp         = "FMC_MALFORMED_TIMESTAMP"
	ErrorTransportFailure           = "FMC_TRANSPORT_FAILURE"
	ErrorInternal                   = "FMC_INTERNAL_ERROR"
)

// ErrorClass groups text codes into the three failure families a caller
// reacts to differently.
type ErrorClass string

const (
	ErrorClassNone          ErrorClass = ""
	ErrorClassConfiguration ErrorClass = "configuration"
	ErrorClassProtocol      ErrorClass = "protocol"
	ErrorClassTransport     ErrorClass = "transport"
	ErrorClassInternal      ErrorClass = "internal"
)

var errorClasses = map[string]ErrorClass{
	ErrorNoAuthenticationConfigured: ErrorClassConfiguration,
	ErrorUnresolvedHost:             ErrorClassConfiguration,
	ErrorMissingTenantScope:         ErrorClassConfiguration,
	ErrorUnknownOperation:           ErrorClassConfiguration,
	ErrorUnsupportedMethod:          ErrorClassConfiguration,
	ErrorInvalidConfig:              ErrorClassConfiguration,
	ErrorMissingCredentialHeader:    ErrorClassProtocol,
	ErrorMalformedTenantID:          ErrorClassProtocol,
	ErrorMalformedTimestamp:         ErrorClassProtocol,
	ErrorTransportFailure:           ErrorClassTransport,
	ErrorInternal:                   ErrorClassInternal,
}

// ClassOf reports the family of err, or ErrorClassNone when err is nil or
// carries no known text code.
func ClassOf(err error) ErrorClass {
	if err == nil {
		return ErrorClassNone
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return ErrorClassNone
	}
	if class, ok := errorClasses[strings.TrimSpace(rich.TextCode)]; ok {
		return class
	}
	return ErrorClassNone
}

func HasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

func IsConfigurationError(err error) bool { return ClassOf(err) == ErrorClassConfiguration }

func IsProtocolError(err error) bool { return ClassOf(err) == ErrorClassProtocol }

func IsTransportError(err error) bool { return ClassOf(err) == ErrorClassTransport }

func configurationError(message string, textCode string, metadata map[string]any) error {
	return newClassifiedError(message, goerrors.CategoryBadInput, http.StatusBadRequest, textCode, metadata)
}

func protocolError(message string, textCode string, metadata map[string]any) error {
	return newClassifiedError(message, goerrors.CategoryExternal, http.StatusBadGateway, textCode, metadata)
}

func protocolWrapError(source error, message string, textCode string, metadata map[string]any) error {
	if source == nil {
		return protocolError(message, textCode, metadata)
	}
	err := goerrors.Wrap(source, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(source error, message string, metadata map[string]any) error {
	if source == nil {
		return newClassifiedError(message, goerrors.CategoryExternal, http.StatusBadGateway, ErrorTransportFailure, metadata)
	}
	err := goerrors.Wrap(source, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorTransportFailure)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func internalError(message string) error {
	return newClassifiedError(message, goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, nil)
}

func newClassifiedError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// Error constructors shared with the endpoints and transport packages so
// every layer reports the same text codes.

func NewUnresolvedHostError(op OperationID) error {
	return configurationError(
		"fmc: host is required to resolve an operation",
		ErrorUnresolvedHost,
		map[string]any{"operation": op.String()},
	)
}

func NewMissingTenantScopeError(op OperationID) error {
	return configurationError(
		"fmc: operation requires a tenant scope; authenticate first",
		ErrorMissingTenantScope,
		map[string]any{"operation": op.String()},
	)
}

func NewUnknownOperationError(op OperationID) error {
	return configurationError(
		"fmc: unknown operation",
		ErrorUnknownOperation,
		map[string]any{"operation": op.String()},
	)
}

func mapBuildError(err error) error {
	if err == nil {
		return nil
	}
	if ClassOf(err) != ErrorClassNone {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "fmc: invalid configuration").
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorInvalidConfig)
}
