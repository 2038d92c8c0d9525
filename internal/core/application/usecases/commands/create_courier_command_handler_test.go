package commands_test

import (
	"errors"
	"testing"

	"shoecare/internal/core/application/usecases/commands"
	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreateCourierCommand(t *testing.T) commands.CreateCourierCommand {
	t.Helper()
	cmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), "Budi", "0811")
	require.NoError(t, err)
	return cmd
}

func notFound() error {
	return errs.NewObjectNotFoundError("courier", "new")
}

func TestCreateCourierCommandHandler_Handle(t *testing.T) {
	t.Run("should persist an available courier", func(t *testing.T) {
		ctx := t.Context()
		cmd := newCreateCourierCommand(t)

		var captured *courier.Courier
		mockRepo := new(MockCourierRepository)
		mockUoW := new(MockCourierUoW)
		mockFactory := new(MockCourierUoWFactory)

		mock.InOrder(
			mockUoW.On("Begin", ctx).Return(nil).Once(),
			mockUoW.On("CourierRepository").Return(mockRepo).Once(),
			mockRepo.On("Get", ctx, cmd.CourierID()).Return(nil, notFound()).Once(),
			mockRepo.On("Add", ctx, mock.MatchedBy(func(c *courier.Courier) bool {
				captured = c
				return true
			})).Return(nil).Once(),
			mockUoW.On("Commit", ctx).Return(nil).Once(),
			mockUoW.On("Rollback", ctx).Return(nil).Once(),
		)
		mockFactory.On("Create").Return(mockUoW).Once()

		err := commands.NewCreateCourierCommandHandler(mockFactory).Handle(ctx, cmd)

		require.NoError(t, err)
		require.NotNil(t, captured)
		assert.Equal(t, cmd.CourierID(), captured.ID())
		assert.Equal(t, "Budi", captured.Name())
		assert.True(t, captured.IsAvailable())
		assert.Nil(t, captured.CurrentDeliveryID())
		mockFactory.AssertExpectations(t)
		mockUoW.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("should reject a command not built by its constructor", func(t *testing.T) {
		mockFactory := new(MockCourierUoWFactory)

		err := commands.NewCreateCourierCommandHandler(mockFactory).Handle(t.Context(), commands.CreateCourierCommand{})

		require.ErrorIs(t, err, commands.ErrCreateCourierCommandIsNotConstructed)
		mockFactory.AssertNotCalled(t, "Create")
	})

	t.Run("should return the begin error", func(t *testing.T) {
		ctx := t.Context()
		expected := errors.New("begin transaction failed")
		mockUoW := new(MockCourierUoW)
		mockFactory := new(MockCourierUoWFactory)

		mock.InOrder(
			mockFactory.On("Create").Return(mockUoW).Once(),
			mockUoW.On("Begin", ctx).Return(expected).Once(),
		)

		err := commands.NewCreateCourierCommandHandler(mockFactory).Handle(ctx, newCreateCourierCommand(t))

		assert.Equal(t, expected, err)
		mockUoW.AssertExpectations(t)
	})

	t.Run("should roll back and return the repository error", func(t *testing.T) {
		ctx := t.Context()
		repoErr := errors.New("repository add failed")
		mockRepo := new(MockCourierRepository)
		mockUoW := new(MockCourierUoW)
		mockFactory := new(MockCourierUoWFactory)

		mock.InOrder(
			mockUoW.On("Begin", ctx).Return(nil).Once(),
			mockUoW.On("CourierRepository").Return(mockRepo).Once(),
			mockRepo.On("Get", ctx, mock.Anything).Return(nil, notFound()).Once(),
			mockRepo.On("Add", ctx, mock.AnythingOfType("*courier.Courier")).Return(repoErr).Once(),
			mockUoW.On("Rollback", ctx).Return(errors.New("rollback failed")).Once(),
		)
		mockFactory.On("Create").Return(mockUoW).Once()

		err := commands.NewCreateCourierCommandHandler(mockFactory).Handle(ctx, newCreateCourierCommand(t))

		assert.Equal(t, repoErr, err)
		mockUoW.AssertNotCalled(t, "Commit", ctx)
		mockUoW.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("should return the commit error", func(t *testing.T) {
		ctx := t.Context()
		commitErr := errors.New("commit failed")
		mockRepo := new(MockCourierRepository)
		mockUoW := new(MockCourierUoW)
		mockFactory := new(MockCourierUoWFactory)

		mock.InOrder(
			mockUoW.On("Begin", ctx).Return(nil).Once(),
			mockUoW.On("CourierRepository").Return(mockRepo).Once(),
			mockRepo.On("Get", ctx, mock.Anything).Return(nil, notFound()).Once(),
			mockRepo.On("Add", ctx, mock.AnythingOfType("*courier.Courier")).Return(nil).Once(),
			mockUoW.On("Commit", ctx).Return(commitErr).Once(),
			mockUoW.On("Rollback", ctx).Return(nil).Once(),
		)
		mockFactory.On("Create").Return(mockUoW).Once()

		err := commands.NewCreateCourierCommandHandler(mockFactory).Handle(ctx, newCreateCourierCommand(t))

		assert.Equal(t, commitErr, err)
		mockUoW.AssertExpectations(t)
	})

	t.Run("should refuse a user that is already a courier", func(t *testing.T) {
		ctx := t.Context()
		cmd := newCreateCourierCommand(t)
		existing, err := courier.NewCourier(cmd.CourierID(), "Budi", "0811")
		require.NoError(t, err)
		mockRepo := new(MockCourierRepository)
		mockUoW := new(MockCourierUoW)
		mockFactory := new(MockCourierUoWFactory)

		mock.InOrder(
			mockUoW.On("Begin", ctx).Return(nil).Once(),
			mockUoW.On("CourierRepository").Return(mockRepo).Once(),
			mockRepo.On("Get", ctx, cmd.CourierID()).Return(existing, nil).Once(),
			mockUoW.On("Rollback", ctx).Return(nil).Once(),
		)
		mockFactory.On("Create").Return(mockUoW).Once()

		err = commands.NewCreateCourierCommandHandler(mockFactory).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrAlreadyExists)
		mockRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		mockUoW.AssertNotCalled(t, "Commit", ctx)
		mockUoW.AssertExpectations(t)
	})

	t.Run("should return a lookup failure", func(t *testing.T) {
		ctx := t.Context()
		lookupErr := errors.New("connection reset")
		mockRepo := new(MockCourierRepository)
		mockUoW := new(MockCourierUoW)
		mockFactory := new(MockCourierUoWFactory)

		mock.InOrder(
			mockUoW.On("Begin", ctx).Return(nil).Once(),
			mockUoW.On("CourierRepository").Return(mockRepo).Once(),
			mockRepo.On("Get", ctx, mock.Anything).Return(nil, lookupErr).Once(),
			mockUoW.On("Rollback", ctx).Return(nil).Once(),
		)
		mockFactory.On("Create").Return(mockUoW).Once()

		err := commands.NewCreateCourierCommandHandler(mockFactory).Handle(ctx, newCreateCourierCommand(t))

		assert.Equal(t, lookupErr, err)
		mockUoW.AssertExpectations(t)
	})
}
