package repository_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/impactlink/impactlink/infra/repository"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, domain.ErrNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), domain.ErrNotFound},
		{"unrelated error unchanged", errors.New("connection reset"), errors.New("connection reset")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := repository.MapGormErrorToDomain(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.want.Error(), got.Error())
		})
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	err := repository.WrapError(func() error { return gorm.ErrRecordNotFound })
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, repository.WrapError(func() error { return nil }))
}
