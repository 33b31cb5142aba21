package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WithError(t *testing.T) {
	cause := errors.New("file is garbage")
	err := ErrInvalidImage.WithError(cause)

	assert.Equal(t, ErrInvalidImage.Code, err.Code)
	assert.Equal(t, ErrInvalidImage.StatusCode, err.StatusCode)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "file is garbage")

	// the sentinel itself must stay untouched
	assert.Nil(t, ErrInvalidImage.Err)
}

func TestAppError_As(t *testing.T) {
	var appErr *AppError
	wrapped := ErrDuplicateKey.WithError(errors.New("key B20CS001"))

	require.True(t, errors.As(error(wrapped), &appErr))
	assert.Equal(t, "DUPLICATE_KEY", appErr.Code)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input   string
		want    Action
		wantErr bool
	}{
		{"enter", ActionEnter, false},
		{"leave", ActionLeave, false},
		{"entry", "", true},
		{"exit", "", true},
		{"", "", true},
		{"ENTER", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, error(ErrInvalidAction))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentity_Validate(t *testing.T) {
	valid := Identity{Key: "B20CS001", Name: "Asha Rao"}
	assert.NoError(t, valid.Validate())

	missingKey := Identity{Name: "Asha Rao"}
	assert.Error(t, missingKey.Validate())

	missingName := Identity{Key: "B20CS001"}
	assert.Error(t, missingName.Validate())
}

func TestMatchResult_Matched(t *testing.T) {
	assert.True(t, MatchResult{Outcome: OutcomeMatched, IdentityID: 7}.Matched())
	assert.False(t, NoMatch.Matched())
	assert.False(t, MatchResult{Outcome: OutcomeNoFace}.Matched())
	assert.False(t, MatchResult{Outcome: OutcomeAmbiguous}.Matched())
}
