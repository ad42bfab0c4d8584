package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/iota-uz/hr-people/modules/people/services"
)

const (
	exitFailure       = 1
	exitValidation    = 2
	exitNotFound      = 3
	exitAuthorization = 4
)

type commandOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

type errorOutput struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode maps service error kinds to distinct process exit codes.
func exitCode(err error) int {
	kind, ok := services.KindOf(err)
	if !ok {
		return exitFailure
	}
	switch kind {
	case services.KindValidation, services.KindConflict:
		return exitValidation
	case services.KindNotFound:
		return exitNotFound
	case services.KindAuthorization:
		return exitAuthorization
	}
	return exitFailure
}

// describeError renders a service error with its code and details.
func describeError(err error) errorOutput {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		return errorOutput{Code: svcErr.Code, Message: svcErr.Message, Details: svcErr.Details}
	}
	return errorOutput{Code: "PEOPLE_INTERNAL", Message: err.Error()}
}

func writeError(err error) {
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(describeError(err))
}
