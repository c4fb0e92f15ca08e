package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/swipematch/internal/errors"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		in   error
		kind svcErr.Kind
	}{
		{"not found", fmt.Errorf("find user: %w", gorm.ErrRecordNotFound), svcErr.KindNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, svcErr.KindConflict},
		{"deadline", context.DeadlineExceeded, svcErr.KindInternal},
		{"other", stderrors.New("connection reset"), svcErr.KindInternal},
		{"already kinded", svcErr.Unauthorized("nope"), svcErr.KindUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, svcErr.KindOf(svcErr.Map(tc.in)))
		})
	}
	assert.Nil(t, svcErr.Map(nil))
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("unmatch: %w", svcErr.Unauthorized("not a participant"))

	assert.True(t, stderrors.Is(err, svcErr.ErrUnauthorized))
	assert.False(t, stderrors.Is(err, svcErr.ErrNotFound))
	assert.Equal(t, "not a participant", svcErr.MessageOf(err))
}

func TestInternalHidesCause(t *testing.T) {
	err := svcErr.Internal(stderrors.New("dial tcp 10.0.0.1:3306: refused"))

	assert.Equal(t, svcErr.KindInternal, svcErr.KindOf(err))
	assert.Equal(t, "internal error", svcErr.MessageOf(err))
	assert.Equal(t, "internal error", svcErr.MessageOf(stderrors.New("raw")))
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, svcErr.IsDuplicate(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, svcErr.IsDuplicate(svcErr.Conflict("exists")))
	assert.False(t, svcErr.IsDuplicate(stderrors.New("boom")))
}
