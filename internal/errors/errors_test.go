package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_Error(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, "bad thing", New(UnknownErrorCode, "bad thing").Error())
	assert.Equal(t, "bad thing: boom", Wrap(UnknownErrorCode, "bad thing", cause).Error())
	assert.Equal(t, "bad thing", Newf(UnknownErrorCode, "bad %s", "thing").Error())
}

func TestBaseError_Accessors(t *testing.T) {
	err := New(ConfigurationErrorCode, "x")
	assert.Empty(t, err.Context())

	err.WithContext("key", 1).WithSuggestion("try this").WithSuggestion("or that")
	assert.Equal(t, map[string]any{"key": 1}, err.Context())
	assert.Equal(t, []string{"try this", "or that"}, err.Suggestions())
	assert.Nil(t, err.Unwrap())
}

func TestErrorCode_String(t *testing.T) {
	tests := map[ErrorCode]string{
		RegistrationErrorCode:  "RegistrationError",
		ConfigurationErrorCode: "ConfigurationError",
		DependencyErrorCode:    "DependencyError",
		StartupErrorCode:       "StartupError",
		FileSystemErrorCode:    "FileSystemError",
		GenerationErrorCode:    "GenerationError",
		UnknownErrorCode:       "UnknownError",
		ErrorCode(99):          "UnknownError",
	}
	for code, want := range tests {
		assert.Equal(t, want, code.String())
	}
}

func TestCodeOfAndHasCode(t *testing.T) {
	inner := WrapDependencyError("*widgets.Route", errors.New("missing type"))
	outer := WrapStartupError("listen", inner)
	wrapped := fmt.Errorf("start: %w", outer)

	assert.Equal(t, StartupErrorCode, CodeOf(wrapped))
	assert.True(t, HasCode(wrapped, StartupErrorCode))
	assert.True(t, HasCode(wrapped, DependencyErrorCode))
	assert.False(t, HasCode(wrapped, GenerationErrorCode))

	assert.Equal(t, UnknownErrorCode, CodeOf(errors.New("plain")))
	assert.False(t, HasCode(nil, StartupErrorCode))

	joined := errors.Join(errors.New("a"), New(FileSystemErrorCode, "b"))
	assert.Equal(t, FileSystemErrorCode, CodeOf(joined))
}

func TestHasCode_JoinedCauses(t *testing.T) {
	missing := errors.Join(
		WrapDependencyError("*widgets.Route", errors.New("missing *services.WidgetStore")),
		WrapDependencyError("*auth.Guard", errors.New("missing *auth.Config")),
	)
	err := fmt.Errorf("start: %w", WrapStartupError("starting", missing))

	assert.True(t, HasCode(err, StartupErrorCode))
	assert.True(t, HasCode(err, DependencyErrorCode))
	assert.False(t, HasCode(err, FileSystemErrorCode))
	assert.False(t, HasCode(errors.Join(errors.New("a"), errors.New("b")), DependencyErrorCode))
}

func TestWrappers(t *testing.T) {
	cause := errors.New("denied")

	err := RegistrationError("route", "Widgets", "constructor must return *Widgets")
	assert.Equal(t, RegistrationErrorCode, err.ErrorCode())
	assert.Equal(t, "invalid route Widgets: constructor must return *Widgets", err.Error())
	assert.Equal(t, "Widgets", err.Context()["component_name"])

	err = StartupError("start", "already started")
	assert.Equal(t, "startup failed during start: already started", err.Error())
	assert.Equal(t, "start", err.Context()["stage"])

	err = WrapFileSystemError("write", "out.go", cause)
	assert.Equal(t, "failed to write file 'out.go': denied", err.Error())
	assert.ErrorIs(t, err, cause)

	err = WrapConfigurationError("lyt.toml", "parse", cause)
	assert.Equal(t, ConfigurationErrorCode, err.ErrorCode())
	assert.Equal(t, "parse", err.Context()["operation"])

	assert.Equal(t, "configuration error in 'server': port out of range",
		ConfigurationError("server", "port out of range").Error())
	assert.Equal(t, "dependency error for *Store: not bound",
		DependencyError("*Store", "not bound").Error())
	assert.Equal(t, GenerationErrorCode, WrapGenerateError("modules.go", cause).ErrorCode())
}
