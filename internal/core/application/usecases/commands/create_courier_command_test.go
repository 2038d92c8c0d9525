package commands_test

import (
	"testing"

	"shoecare/internal/core/application/usecases/commands"
	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateCourierCommand(t *testing.T) {
	id := kernel.NewUUID()

	t.Run("should trim and keep valid input", func(t *testing.T) {
		cmd, err := commands.NewCreateCourierCommand(id, "  Budi  ", " 0811 ")

		require.NoError(t, err)
		assert.Equal(t, id, cmd.CourierID())
		assert.Equal(t, "Budi", cmd.Name())
		assert.Equal(t, "0811", cmd.Phone())
		assert.NoError(t, cmd.Validate())
	})

	testCases := []struct {
		name     string
		id       kernel.UUID
		courier  string
		phone    string
		expected error
	}{
		{name: "zero id", id: kernel.UUID{}, courier: "Budi", phone: "0811", expected: kernel.ErrUUIDIsNotConstructed},
		{name: "blank name", id: id, courier: "  ", phone: "0811", expected: courier.ErrNameIsRequired},
		{name: "blank phone", id: id, courier: "Budi", phone: "", expected: courier.ErrPhoneIsRequired},
	}

	for _, tc := range testCases {
		t.Run("should reject "+tc.name, func(t *testing.T) {
			cmd, err := commands.NewCreateCourierCommand(tc.id, tc.courier, tc.phone)

			require.ErrorIs(t, err, tc.expected)
			assert.Zero(t, cmd)
		})
	}

	t.Run("should report every invalid field", func(t *testing.T) {
		_, err := commands.NewCreateCourierCommand(kernel.UUID{}, "", "")

		require.ErrorIs(t, err, courier.ErrNameIsRequired)
		require.ErrorIs(t, err, courier.ErrPhoneIsRequired)
	})

	t.Run("should fail validation of a zero value", func(t *testing.T) {
		var cmd commands.CreateCourierCommand
		require.ErrorIs(t, cmd.Validate(), commands.ErrCreateCourierCommandIsNotConstructed)
	})
}
