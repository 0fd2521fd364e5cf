package validation_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf/internal/errors"
	"github.com/listenupapp/bookshelf/internal/validation"
)

type formRequest struct {
	Title  string `form:"title" validate:"required,max=10"`
	Author string `form:"author" validate:"required"`
	Tags   string `form:"tags"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(formRequest{Title: "1984", Author: "Оруэлл"}))
	assert.NoError(t, v.Validate(&domain.Book{Title: "Чистый код", Author: "Роберт Мартин"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name        string
		req         any
		wantDetails map[string]string
	}{
		{
			name:        "missing title",
			req:         formRequest{Author: "A"},
			wantDetails: map[string]string{"title": "is required"},
		},
		{
			name:        "title too long",
			req:         formRequest{Title: strings.Repeat("x", 11), Author: "A"},
			wantDetails: map[string]string{"title": "must not exceed 10 characters"},
		},
		{
			name: "both missing",
			req:  formRequest{},
			wantDetails: map[string]string{
				"title":  "is required",
				"author": "is required",
			},
		},
		{
			name:        "book uses json names",
			req:         &domain.Book{Title: "Dune"},
			wantDetails: map[string]string{"author": "is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidation))

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusUnprocessableEntity, domainErr.HTTPStatus())
			assert.Equal(t, tt.wantDetails, domainErr.Details)
		})
	}
}

func TestValidator_MessageIsStable(t *testing.T) {
	err := validation.New().Validate(formRequest{})
	require.Error(t, err)

	assert.Equal(t, "validation failed: author is required; title is required", err.Error())
	assert.NotContains(t, err.Error(), "Title")
}

func TestValidator_NonStruct(t *testing.T) {
	err := validation.New().Validate(42)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerrors.ErrValidation)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeInternal, domainErr.Code)
}
