package actor_test

import (
	"testing"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := actor.ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, actor.RoleAdmin, r)

	_, err = actor.ParseRole("driver")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestActor_Require(t *testing.T) {
	admin, err := actor.New("u-1", "Rina", actor.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, admin.Require(actor.RoleAdmin))
	require.ErrorIs(t, admin.Require(actor.RoleCourier), errs.ErrForbidden)
	require.ErrorIs(t, actor.Actor{}.Require(actor.RoleAdmin), errs.ErrUnauthorized)
	assert.True(t, actor.Actor{}.IsAnonymous())
}

func TestNew_RequiresID(t *testing.T) {
	_, err := actor.New("", "x", actor.RoleCustomer)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
