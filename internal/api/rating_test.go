package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/forkful/backend/internal/testhelpers"
)

func TestRateEndpoint(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	bob := testhelpers.CreateUser(t, s.db, "bob")
	carol := testhelpers.CreateUser(t, s.db, "carol")
	recipe := testhelpers.CreateRecipe(t, s.db, alice.ID)
	path := "/api/v1/recipes/" + recipe.ID.String() + "/rate/"
	bobToken := s.token(t, bob)

	w := s.do(t, http.MethodPost, path, map[string]int{"score": 6}, bobToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []interface{}{"Rating must be between 1 and 5."}, fields(t, decode(t, w))["score"])

	w = s.do(t, http.MethodPost, path, map[string]int{"score": 4}, bobToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Rating submitted successfully!", body["message"])
	assert.Equal(t, float64(4), body["recipe_average_rating"])

	w = s.do(t, http.MethodPost, path, map[string]int{"score": 5}, s.token(t, carol))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 4.5, decode(t, w)["recipe_average_rating"])

	w = s.do(t, http.MethodPost, path, map[string]interface{}{"score": 2, "review": "Too salty"}, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Rating updated successfully!", body["message"])
	assert.Equal(t, 3.5, body["recipe_average_rating"])
	assert.Equal(t, float64(2), body["recipe_ratings_count"])
	rating := body["rating"].(map[string]interface{})
	assert.Equal(t, float64(2), rating["score"])
	assert.Equal(t, "Too salty", rating["review"])

	w = s.do(t, http.MethodGet, path, nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["score"])

	w = s.do(t, http.MethodGet, "/api/v1/recipes/"+recipe.ID.String()+"/ratings/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = s.do(t, http.MethodPost, path, map[string]int{"score": 5}, s.token(t, alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot rate your own recipe.", decode(t, w)["error"])

	w = s.do(t, http.MethodDelete, path, nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Rating deleted successfully!", body["message"])
	assert.Equal(t, float64(5), body["recipe_average_rating"])

	w = s.do(t, http.MethodDelete, path, nil, bobToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "You haven't rated this recipe."}`, w.Body.String())

	w = s.do(t, http.MethodGet, path, nil, bobToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, path, map[string]int{"score": 3}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
