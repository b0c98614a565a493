package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/mavroute/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "endpoint", ID: "udpin:0.0.0.0:14550"}
		assert.Equal(t, "endpoint with ID udpin:0.0.0.0:14550 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("remove: %w", pkgerrors.NewNotFoundError("endpoint", "x"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
		assert.False(t, pkgerrors.IsAlreadyExists(wrapped))
	})
}

func TestAlreadyExistsError(t *testing.T) {
	err := pkgerrors.NewAlreadyExistsError("endpoint", "tcpin:0.0.0.0:5760")
	assert.Equal(t, "endpoint with ID tcpin:0.0.0.0:5760 already exists", err.Error())
	assert.True(t, pkgerrors.IsAlreadyExists(err))
	assert.Equal(t, "already_exists", pkgerrors.Reason(err))
}

func TestProtectedError(t *testing.T) {
	err := pkgerrors.NewProtectedError("endpoint", "serial:/dev/ttyAMA0:115200")
	assert.Contains(t, err.Error(), "is protected and cannot be removed")
	assert.True(t, pkgerrors.IsProtected(err))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Field: "name", Message: "too short"}
		assert.Equal(t, "validation failed for field name: too short", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("", nil, "empty manifest")
		assert.Equal(t, "validation failed: empty manifest", err.Error())
		assert.Nil(t, err.Reason)
		assert.Equal(t, "invalid_input", pkgerrors.Reason(err))
	})

	t.Run("rejection matches exactly one reason", func(t *testing.T) {
		err := pkgerrors.NewRejection(pkgerrors.ErrInvalidPort, "argument", 0,
			"ports must be in the range 1:65535, received 0")

		assert.ErrorIs(t, err, pkgerrors.ErrInvalidPort)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
		for _, other := range []error{
			pkgerrors.ErrInvalidField,
			pkgerrors.ErrInvalidKind,
			pkgerrors.ErrInvalidAddress,
			pkgerrors.ErrInvalidPath,
			pkgerrors.ErrInvalidBaudRate,
		} {
			assert.NotErrorIs(t, err, other)
		}
	})

	t.Run("allowed values", func(t *testing.T) {
		err := pkgerrors.NewRejection(pkgerrors.ErrInvalidKind, "connection_type", "udp", "unknown", "udpin", "udpout")
		assert.Equal(t, []string{"udpin", "udpout"}, err.Allowed)
		assert.Equal(t, "udp", err.Value)
	})
}

func TestTypeMismatchError(t *testing.T) {
	err := pkgerrors.NewTypeMismatchError("endpoint.Endpoint", "a string")
	assert.Equal(t, "cannot compare endpoint.Endpoint with string", err.Error())
	assert.True(t, pkgerrors.IsTypeMismatch(err))
	assert.Equal(t, "other", pkgerrors.Reason(err))
}

func TestConfigError(t *testing.T) {
	base := errors.New("no such key")
	err := pkgerrors.NewConfigError("viper", "endpoint_files: bad value", base)
	assert.Contains(t, err.Error(), "configuration error in viper")
	assert.Same(t, base, errors.Unwrap(err))

	bare := &pkgerrors.ConfigError{Message: "missing"}
	assert.Equal(t, "configuration error: missing", bare.Error())
}

func TestParseError(t *testing.T) {
	t.Run("with file", func(t *testing.T) {
		err := pkgerrors.NewParseError("yaml", "endpoints.yaml", "unexpected key", nil)
		assert.Equal(t, "parse error in yaml file endpoints.yaml: unexpected key", err.Error())
	})

	t.Run("wrap helper", func(t *testing.T) {
		base := errors.New("  unexpected end of JSON input\n")
		err := pkgerrors.WrapParse("json", "", base)
		var perr *pkgerrors.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "json parse error: unexpected end of JSON input", err.Error())
		assert.Same(t, base, errors.Unwrap(err))
		assert.NoError(t, pkgerrors.WrapParse("json", "", nil))
	})

	t.Run("predicate", func(t *testing.T) {
		err := fmt.Errorf("loading: %w", pkgerrors.NewParseError("yaml", "", "bad", nil))
		assert.True(t, pkgerrors.IsParseError(err))
		assert.False(t, pkgerrors.IsIOError(err))
	})
}

func TestIOError(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		err := pkgerrors.NewIOError("read", "/etc/mavroute/endpoints.yaml", errors.New("permission denied"))
		assert.Equal(t, "IO error during read of /etc/mavroute/endpoints.yaml: permission denied", err.Error())
	})

	t.Run("wrap helper", func(t *testing.T) {
		base := errors.New("disk full")
		err := pkgerrors.WrapIO("open", "endpoints.yaml", base)
		var ioErr *pkgerrors.IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "open", ioErr.Operation)
		assert.ErrorIs(t, err, base)
		assert.NoError(t, pkgerrors.WrapIO("open", "x", nil))
		assert.True(t, pkgerrors.IsIOError(fmt.Errorf("loading: %w", err)))
	})
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("boom"), "other"},
		{pkgerrors.NewRejection(pkgerrors.ErrInvalidField, "name", "x", "short"), "invalid_field"},
		{pkgerrors.NewRejection(pkgerrors.ErrInvalidKind, "connection_type", "x", "bad"), "invalid_kind"},
		{pkgerrors.NewRejection(pkgerrors.ErrInvalidAddress, "place", "x", "bad"), "invalid_address"},
		{pkgerrors.NewRejection(pkgerrors.ErrInvalidPort, "argument", 0, "bad"), "invalid_port"},
		{pkgerrors.NewRejection(pkgerrors.ErrInvalidPath, "place", "tty", "bad"), "invalid_path"},
		{fmt.Errorf("entry 3: %w", pkgerrors.NewRejection(pkgerrors.ErrInvalidBaudRate, "argument", 1, "bad")), "invalid_baud_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := pkgerrors.Reason(tt.err)
			assert.Equal(t, tt.want, got)
			if tt.err != nil {
				assert.Contains(t, pkgerrors.Reasons(), got)
			}
		})
	}
}

func TestAPIError(t *testing.T) {
	notFound := pkgerrors.NewAPIError(404, "NOT_FOUND", "endpoint with ID x not found", "")
	assert.True(t, pkgerrors.IsNotFound(notFound))
	assert.False(t, pkgerrors.IsValidationError(notFound))
	assert.Equal(t, "API error (status 404): endpoint with ID x not found", notFound.Error())

	assert.True(t, pkgerrors.IsAlreadyExists(pkgerrors.NewAPIError(409, "CONFLICT", "", "")))
	assert.True(t, pkgerrors.IsProtected(pkgerrors.NewAPIError(403, "FORBIDDEN", "", "")))

	rejected := fmt.Errorf("create: %w", pkgerrors.NewAPIError(400, "INVALID_ENDPOINT", "invalid port", "invalid_port"))
	assert.True(t, pkgerrors.IsValidationError(rejected))
	assert.ErrorIs(t, rejected, pkgerrors.ErrInvalidPort)
	assert.NotErrorIs(t, rejected, pkgerrors.ErrInvalidBaudRate)
	assert.Equal(t, "invalid_port", pkgerrors.Reason(rejected))

	internal := pkgerrors.NewAPIError(500, "INTERNAL_ERROR", "", "")
	assert.Equal(t, "other", pkgerrors.Reason(internal))
	assert.Equal(t, "API error (status 500)", internal.Error())
}
