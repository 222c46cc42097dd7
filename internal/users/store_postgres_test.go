// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package users

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
)

/*
TestNotFoundOr verifies the existence-probe classification: a missing row
becomes NotFound for the named resource, while a failed probe query keeps
its cause so it surfaces as a server error rather than a 404.
*/
func TestNotFoundOr(t *testing.T) {
	t.Run("missing_row", func(t *testing.T) {
		err := notFoundOr(pgx.ErrNoRows, "User")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, 404, ae.HTTPStatus)
		assert.Equal(t, "User not found", ae.Message)
	})

	t.Run("execution_failure", func(t *testing.T) {
		cause := fmt.Errorf("postgres_exists_check_failed: %w", errors.New("connection refused"))

		err := notFoundOr(cause, "User")
		assert.Equal(t, cause, err)
		assert.Nil(t, apperr.As(err))
	})
}
