package decorator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type (
	renameCommand struct {
		ID int
	}

	stubCommandHandler struct {
		err error
	}

	recordingInvalidator struct {
		keys []string
	}
)

func (h stubCommandHandler) Handle(_ context.Context, cmd renameCommand) (int, error) {
	return cmd.ID, h.err
}

func (r *recordingInvalidator) Invalidate(_ context.Context, keys ...string) {
	r.keys = append(r.keys, keys...)
}

func TestInvalidationDecorator(t *testing.T) {
	t.Parallel()

	keysFn := func(cmd renameCommand, _ int) []string {
		return []string{"item:" + string(rune('0'+cmd.ID)), "items:all"}
	}

	cases := []struct {
		name         string
		handlerErr   error
		expectedKeys []string
	}{
		{
			name:         "invalidates keys in order after success",
			expectedKeys: []string{"item:7", "items:all"},
		},
		{
			name:       "leaves cache untouched when command fails",
			handlerErr: errors.New("write failed"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			invalidator := &recordingInvalidator{}
			handler := ApplyInvalidationDecorator[renameCommand, int](
				stubCommandHandler{err: tc.handlerErr},
				invalidator,
				keysFn,
			)

			result, err := handler.Handle(t.Context(), renameCommand{ID: 7})
			if tc.handlerErr != nil {
				require.ErrorIs(t, err, tc.handlerErr)
				require.Empty(t, invalidator.keys)

				return
			}

			require.NoError(t, err)
			require.Equal(t, 7, result)
			require.Equal(t, tc.expectedKeys, invalidator.keys)
		})
	}
}

func TestGenerateActionName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "renameCommand", generateActionName(renameCommand{}))
	require.Equal(t, "renameCommand", generateActionName(&renameCommand{}))
}
