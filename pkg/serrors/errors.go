package serrors

import "fmt"

// BaseError is a localizable error carrying a stable code.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	if len(e.TemplateData) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s %v", e.Message, e.TemplateData)
}

// WithTemplateData returns a copy of the error with template data attached.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	clone := *e
	clone.TemplateData = data
	return &clone
}

// Is matches errors sharing the same code so copies created by WithTemplateData
// still satisfy errors.Is against the sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}
