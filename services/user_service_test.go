package services

import (
	"context"
	"testing"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterIsIdempotentPerEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)
	ctx := context.Background()

	u, created, err := svc.Register(ctx, UserInput{Name: "Nadia", Email: "nadia@x.test"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, u.ID)

	_, created, err = svc.Register(ctx, UserInput{Name: "Someone Else", Email: "nadia@x.test"})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := svc.FindByEmail(ctx, "nadia@x.test")
	require.NoError(t, err)
	assert.Equal(t, "Nadia", got.Name)

	_, err = svc.FindByEmail(ctx, "ghost@x.test")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUserService_ListFilters(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)
	ctx := context.Background()

	for _, in := range []UserInput{
		{Name: "Nadia Islam", Email: "nadia@x.test"},
		{Name: "Tanvir", Email: "tanvir@y.test"},
		{Name: "Nadim", Email: "nadim@y.test"},
	} {
		_, _, err := svc.Register(ctx, in)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byName, err := svc.List(ctx, "nad", "")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	both, err := svc.List(ctx, "nad", "@y.")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "Nadim", both[0].Name)
}

func TestUserService_RolesAndDelete(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, UserInput{Email: "boss@x.test"})
	require.NoError(t, err)

	isAdmin, err := svc.IsAdmin(ctx, "boss@x.test")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	res, err := svc.MakeAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.ModifiedCount)

	isAdmin, err = svc.IsAdmin(ctx, "boss@x.test")
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = svc.IsAdmin(ctx, "ghost@x.test")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	n, err := svc.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	res, err = svc.MakeAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, res.MatchedCount)
}

func TestBadgeForPackage(t *testing.T) {
	tests := []struct {
		pkg   string
		badge string
		ok    bool
	}{
		{"silver", models.BadgeSilver, true},
		{"Gold", models.BadgeGold, true},
		{" PLATINUM ", models.BadgePlatinum, true},
		{"bronze", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			badge, ok := BadgeForPackage(tt.pkg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.badge, badge)
		})
	}
}

func TestUserService_UpdateBadge(t *testing.T) {
	mailer := &mockNotifier{}
	svc := NewUserService(newTestDB(t), mailer)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, UserInput{Email: "p@x.test"})
	require.NoError(t, err)

	premium, err := svc.IsPremium(ctx, "p@x.test")
	require.NoError(t, err)
	assert.False(t, premium)

	mailer.On("Send", mock.Anything, "p@x.test", "Welcome to the Gold package", mock.Anything).Return(nil).Once()

	badge, err := svc.UpdateBadge(ctx, "p@x.test", "gold")
	require.NoError(t, err)
	assert.Equal(t, models.BadgeGold, badge)

	premium, err = svc.IsPremium(ctx, "p@x.test")
	require.NoError(t, err)
	assert.True(t, premium)

	_, err = svc.UpdateBadge(ctx, "p@x.test", "bronze")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, "Unknown package name", apperror.As(err).Message)

	_, err = svc.UpdateBadge(ctx, "", "gold")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.UpdateBadge(ctx, "ghost@x.test", "silver")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	mailer.AssertExpectations(t)
}
