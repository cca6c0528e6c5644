package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/testhelpers"
	"github.com/pageza/forkful/backend/internal/types"
)

func setupProfile(t *testing.T) (*service.ProfileService, *gorm.DB, *memStore) {
	db := testhelpers.SetupTestDatabase(t)
	store := newMemStore()
	return service.NewProfileService(db, store), db, store
}

func TestToggleFollow(t *testing.T) {
	svc, db, _ := setupProfile(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	testhelpers.CreateUser(t, db, "bob")

	res, err := svc.ToggleFollow(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, res.IsFollowing)
	assert.Equal(t, int64(1), res.FollowersCount)

	res, err = svc.ToggleFollow(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.False(t, res.IsFollowing)
	assert.Equal(t, int64(0), res.FollowersCount)

	var rows int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&rows).Error)
	assert.Equal(t, int64(0), rows)
}

func TestToggleFollowErrors(t *testing.T) {
	svc, db, _ := setupProfile(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")

	_, err := svc.ToggleFollow(ctx, alice.ID, "alice")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "You cannot follow yourself.", verr.Error())

	_, err = svc.ToggleFollow(ctx, alice.ID, "ghost")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFollowersAndFollowing(t *testing.T) {
	svc, db, _ := setupProfile(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	carol := testhelpers.CreateUser(t, db, "carol")
	testhelpers.CreateRecipe(t, db, bob.ID)

	_, err := svc.ToggleFollow(ctx, bob.ID, "alice")
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, carol.ID, "alice")
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, carol.ID, "bob")
	require.NoError(t, err)

	page, err := svc.Followers(ctx, &carol.ID, "alice", types.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)
	require.Len(t, page.Results, 2)

	byName := map[string]types.FollowEntry{}
	for _, e := range page.Results {
		byName[e.Username] = e
	}
	assert.Equal(t, int64(1), byName["bob"].RecipesCount)
	assert.Equal(t, int64(1), byName["bob"].FollowersCount)
	assert.Equal(t, int64(1), byName["bob"].FollowingCount)
	assert.True(t, byName["bob"].IsFollowing, "carol follows bob")
	assert.False(t, byName["carol"].IsFollowing)

	following, err := svc.Following(ctx, nil, "carol", types.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), following.Count)
	for _, e := range following.Results {
		assert.False(t, e.IsFollowing, "anonymous viewer follows nobody")
	}

	profile, err := svc.GetProfile(ctx, &bob.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.FollowersCount)
	assert.Equal(t, int64(0), profile.FollowingCount)
	assert.True(t, profile.IsFollowing)
	assert.Equal(t, alice.ID, profile.ID)
}

func TestUpdateProfile(t *testing.T) {
	svc, db, _ := setupProfile(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")

	_, err := svc.UpdateProfile(ctx, bob.ID, "alice", &types.UpdateProfileRequest{Bio: ptr("hacked")})
	assert.ErrorIs(t, err, service.ErrPermission)

	profile, err := svc.UpdateProfile(ctx, alice.ID, "alice", &types.UpdateProfileRequest{Bio: ptr("Pasta lover")})
	require.NoError(t, err)
	assert.Equal(t, "Pasta lover", profile.Bio)

	_, err = svc.UpdateOwnProfile(ctx, alice.ID, &types.UpdateProfileRequest{ProfilePicture: ptr("not a url")})
	requireFieldError(t, err, "profile_picture", "Enter a valid URL.")

	profile, err = svc.UpdateOwnProfile(ctx, alice.ID, &types.UpdateProfileRequest{ProfilePicture: ptr("https://img.test/a.png")})
	require.NoError(t, err)
	require.NotNil(t, profile.ProfilePicture)
	assert.Equal(t, "https://img.test/a.png", *profile.ProfilePicture)
	assert.Equal(t, "Pasta lover", profile.Bio)
}

func TestUploadPicture(t *testing.T) {
	svc, db, store := setupProfile(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")

	body := []byte("\x89PNG fake image")
	profile, err := svc.UploadPicture(ctx, alice.ID, &service.Upload{
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	require.NoError(t, err)
	require.NotNil(t, profile.ProfilePicture)
	assert.Contains(t, *profile.ProfilePicture, "https://cdn.test/profile_pictures/"+alice.ID.String()+"/")
	assert.Len(t, store.objects, 1)

	_, err = svc.UploadPicture(ctx, alice.ID, &service.Upload{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Size:        4,
		Body:        bytes.NewReader([]byte("text")),
	})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUploadPictureWithoutStorage(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db, nil)
	alice := testhelpers.CreateUser(t, db, "alice")

	_, err := svc.UploadPicture(context.Background(), alice.ID, &service.Upload{
		ContentType: "image/jpeg",
		Size:        3,
		Body:        bytes.NewReader([]byte("jpg")),
	})
	assert.ErrorIs(t, err, service.ErrStorage)
}

func TestDeleteAccountCascades(t *testing.T) {
	svc, db, _ := setupProfile(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	aliceRecipe := testhelpers.CreateRecipe(t, db, alice.ID)
	bobRecipe := testhelpers.CreateRecipe(t, db, bob.ID)

	require.NoError(t, db.Create(&models.Rating{UserID: bob.ID, RecipeID: aliceRecipe.ID, Score: 5}).Error)
	require.NoError(t, db.Create(&models.Rating{UserID: alice.ID, RecipeID: bobRecipe.ID, Score: 3}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: alice.ID, RecipeID: bobRecipe.ID, Text: "Lovely"}).Error)
	require.NoError(t, db.Create(&models.SavedRecipe{UserID: bob.ID, RecipeID: aliceRecipe.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FolloweeID: alice.ID}).Error)

	require.NoError(t, svc.DeleteAccount(ctx, alice.ID))

	counts := map[string]interface{}{
		"users":         &models.User{},
		"recipes":       &models.Recipe{},
		"ratings":       &models.Rating{},
		"comments":      &models.Comment{},
		"saved_recipes": &models.SavedRecipe{},
		"follows":       &models.Follow{},
	}
	expected := map[string]int64{"users": 1, "recipes": 1}
	for name, model := range counts {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Equal(t, expected[name], n, name)
	}

	_, err := svc.GetOwnProfile(ctx, alice.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	err = svc.DeleteAccount(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
