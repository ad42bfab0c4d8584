package composables

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hr-people/pkg/constants"
)

var (
	ErrNoOrg    = errors.New("org not found in context")
	ErrNoLogger = errors.New("logger not found")
)

// WithOrgID binds the acting org id to ctx.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, constants.OrgIDKey, strings.TrimSpace(orgID))
}

func UseOrgID(ctx context.Context) (string, error) {
	orgID, ok := ctx.Value(constants.OrgIDKey).(string)
	if !ok || orgID == "" {
		return "", ErrNoOrg
	}
	return orgID, nil
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the logger bound to ctx.
func UseLogger(ctx context.Context) (*logrus.Entry, error) {
	switch typed := ctx.Value(constants.LoggerKey).(type) {
	case *logrus.Entry:
		return typed, nil
	case *logrus.Logger:
		return logrus.NewEntry(typed), nil
	default:
		return nil, ErrNoLogger
	}
}

// RequestMeta describes the client that triggered an operation.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, constants.RequestKey, meta)
}

func UseRequestMeta(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(constants.RequestKey).(RequestMeta)
	return meta, ok
}
