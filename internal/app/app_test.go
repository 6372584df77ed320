package app_test

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"microblog/internal/config"
	"microblog/internal/services/dto"
	"microblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drivers = []string{config.DriverMemory, config.DriverSQLite}

// forEachDriver runs fn against a fresh server for every backing store.
func forEachDriver(t *testing.T, fn func(t *testing.T, ts *testutil.TestServer)) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, testutil.NewTestServer(t, driver))
		})
	}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorOf(t *testing.T, body string) errorBody {
	t.Helper()
	var e errorBody
	testutil.Decode(t, body, &e)
	return e
}

func createPost(t *testing.T, ts *testutil.TestServer, token, title string) dto.PostResponse {
	t.Helper()
	res, body := ts.SendRequest(t, http.MethodPost, "/posts", token, map[string]string{"title": title, "content": "about " + title})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var post dto.PostResponse
	testutil.Decode(t, body, &post)
	return post
}

func getPost(t *testing.T, ts *testutil.TestServer, token, id string) dto.PostResponse {
	t.Helper()
	res, body := ts.SendRequest(t, http.MethodGet, "/posts/"+id, token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var post dto.PostResponse
	testutil.Decode(t, body, &post)
	return post
}

func TestHealth(t *testing.T) {
	ts := testutil.NewTestServer(t, config.DriverMemory)
	res, body := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestRegistrationAndLogin(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ts *testutil.TestServer) {
		token, aliceID := ts.CreateAndLogin(t, "alice")

		res, body := ts.SendRequest(t, http.MethodPost, "/users", "", map[string]string{
			"email": "alice@example.com", "login": "alice2", "password": "pw1",
		})
		assert.Equal(t, http.StatusConflict, res.StatusCode)
		assert.Equal(t, "Email already registered", errorOf(t, body).Error.Message)

		res, body = ts.SendRequest(t, http.MethodPost, "/users", "", map[string]string{
			"email": "other@example.com", "login": "alice", "password": "pw1",
		})
		assert.Equal(t, http.StatusConflict, res.StatusCode)
		assert.Equal(t, "Login already taken", errorOf(t, body).Error.Message)

		res, body = ts.SendRequest(t, http.MethodPost, "/users", "", map[string]string{
			"email": "not-an-email", "login": "carol", "password": "pw1",
		})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorOf(t, body).Error.Code)

		res, body = ts.SendRequest(t, http.MethodGet, "/users/me", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var me map[string]interface{}
		testutil.Decode(t, body, &me)
		assert.Equal(t, aliceID, me["id"])
		assert.Equal(t, "alice", me["login"])
		assert.NotContains(t, me, "password")
		assert.NotContains(t, me, "password_hash")

		res, body = ts.SendForm(t, "/auth/token", url.Values{"username": {"alice"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "Incorrect username or password", errorOf(t, body).Error.Message)
	})
}

func TestAuthRequired(t *testing.T) {
	ts := testutil.NewTestServer(t, config.DriverMemory)

	res, _ := ts.SendRequest(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "Bearer", res.Header.Get("WWW-Authenticate"))

	res, body := ts.SendRequest(t, http.MethodPost, "/posts", "not-a-token", map[string]string{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "Could not validate credentials", errorOf(t, body).Error.Message)

	// Optional-auth routes accept a bad token as anonymous.
	res, _ = ts.SendRequest(t, http.MethodGet, "/posts", "not-a-token", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestProfileUpdate(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ts *testutil.TestServer) {
		token, _ := ts.CreateAndLogin(t, "alice")
		ts.CreateAndLogin(t, "bob")

		res, body := ts.SendRequest(t, http.MethodPut, "/users/me", token, map[string]string{"bio": "hi there"})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var user dto.UserResponse
		testutil.Decode(t, body, &user)
		require.NotNil(t, user.Bio)
		assert.Equal(t, "hi there", *user.Bio)
		assert.Equal(t, "alice", user.Login)

		res, _ = ts.SendRequest(t, http.MethodPut, "/users/me", token, map[string]string{"login": "bob"})
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})
}

func TestRatingScenario(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ts *testutil.TestServer) {
		aliceToken, _ := ts.CreateAndLogin(t, "alice")
		bobToken, _ := ts.CreateAndLogin(t, "bob")
		post := createPost(t, ts, aliceToken, "T")

		res, body := ts.SendRequest(t, http.MethodPost, "/posts/"+post.ID+"/rate", bobToken, map[string]int{"value": 1})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.JSONEq(t, `{"status":"rated","value":1,"rating":1}`, body)

		seen := getPost(t, ts, bobToken, post.ID)
		assert.Equal(t, 1, seen.Rating)
		require.NotNil(t, seen.UserRating)
		assert.Equal(t, 1, *seen.UserRating)

		anon := getPost(t, ts, "", post.ID)
		assert.Equal(t, 1, anon.Rating)
		assert.Nil(t, anon.UserRating)

		res, body = ts.SendRequest(t, http.MethodPost, "/posts/"+post.ID+"/rate", bobToken, map[string]int{"value": 0})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.JSONEq(t, `{"status":"removed","value":0,"rating":0}`, body)

		seen = getPost(t, ts, bobToken, post.ID)
		assert.Equal(t, 0, seen.Rating)
		assert.Nil(t, seen.UserRating)

		res, _ = ts.SendRequest(t, http.MethodPost, "/posts/"+post.ID+"/rate", bobToken, map[string]int{"value": 5})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodPost, "/posts/"+post.ID+"/rate", bobToken, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodPost, "/posts/missing/rate", bobToken, map[string]int{"value": 1})
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestPostOwnership(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ts *testutil.TestServer) {
		aliceToken, _ := ts.CreateAndLogin(t, "alice")
		bobToken, _ := ts.CreateAndLogin(t, "bob")
		post := createPost(t, ts, aliceToken, "T")

		update := map[string]string{"title": "new", "content": "changed"}

		res, body := ts.SendRequest(t, http.MethodPut, "/posts/"+post.ID, bobToken, update)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Equal(t, "Not enough permissions", errorOf(t, body).Error.Message)

		res, _ = ts.SendRequest(t, http.MethodDelete, "/posts/"+post.ID, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodPut, "/posts/missing", aliceToken, update)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, body = ts.SendRequest(t, http.MethodPut, "/posts/"+post.ID, aliceToken, update)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.JSONEq(t, `{"status":"updated"}`, body)
		assert.Equal(t, "new", getPost(t, ts, "", post.ID).Title)

		res, body = ts.SendRequest(t, http.MethodPost, "/posts", aliceToken, map[string]string{"title": "  ", "content": "c"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)

		res, body = ts.SendRequest(t, http.MethodDelete, "/posts/"+post.ID, aliceToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.JSONEq(t, `{"status":"deleted"}`, body)

		res, _ = ts.SendRequest(t, http.MethodGet, "/posts/"+post.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestPostLists(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ts *testutil.TestServer) {
		aliceToken, aliceID := ts.CreateAndLogin(t, "alice")
		bobToken, _ := ts.CreateAndLogin(t, "bob")
		createPost(t, ts, aliceToken, "Learning Go")
		createPost(t, ts, bobToken, "Cooking")

		var posts []dto.PostResponse

		_, body := ts.SendRequest(t, http.MethodGet, "/posts", "", nil)
		testutil.Decode(t, body, &posts)
		assert.Len(t, posts, 2)

		_, body = ts.SendRequest(t, http.MethodGet, "/posts/my", bobToken, nil)
		testutil.Decode(t, body, &posts)
		require.Len(t, posts, 1)
		assert.Equal(t, "Cooking", posts[0].Title)

		_, body = ts.SendRequest(t, http.MethodGet, "/users/"+aliceID+"/posts", "", nil)
		testutil.Decode(t, body, &posts)
		require.Len(t, posts, 1)
		assert.Equal(t, "alice", posts[0].AuthorLogin)

		_, body = ts.SendRequest(t, http.MethodGet, "/search/posts?q=GO", "", nil)
		testutil.Decode(t, body, &posts)
		require.Len(t, posts, 1)
		assert.Equal(t, "Learning Go", posts[0].Title)

		res, _ := ts.SendRequest(t, http.MethodGet, "/search/posts", "", nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		var users []dto.UserResponse
		res, body = ts.SendRequest(t, http.MethodGet, "/search/users?q=BO", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		testutil.Decode(t, body, &users)
		require.Len(t, users, 1)
		assert.Equal(t, "bob", users[0].Login)
	})
}

func TestComments(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ts *testutil.TestServer) {
		aliceToken, _ := ts.CreateAndLogin(t, "alice")
		bobToken, _ := ts.CreateAndLogin(t, "bob")
		post := createPost(t, ts, aliceToken, "T")
		path := "/posts/" + post.ID + "/comments"

		for _, blank := range []string{"", "   "} {
			res, body := ts.SendRequest(t, http.MethodPost, path, bobToken, map[string]string{"content": blank})
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, "Comment content cannot be empty", errorOf(t, body).Error.Message)
		}

		res, body := ts.SendRequest(t, http.MethodPost, path, bobToken, map[string]string{"content": "  hi  "})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var comment dto.CommentResponse
		testutil.Decode(t, body, &comment)
		assert.Equal(t, "hi", comment.Content)
		assert.Equal(t, "bob", comment.AuthorLogin)

		var comments []dto.CommentResponse
		_, body = ts.SendRequest(t, http.MethodGet, path, "", nil)
		testutil.Decode(t, body, &comments)
		require.Len(t, comments, 1)

		assert.Equal(t, 1, getPost(t, ts, "", post.ID).CommentsCount)

		res, _ = ts.SendRequest(t, http.MethodPost, "/posts/missing/comments", bobToken, map[string]string{"content": "x"})
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodDelete, path+"/"+comment.ID, aliceToken, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodDelete, path+"/missing", bobToken, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, body = ts.SendRequest(t, http.MethodDelete, path+"/"+comment.ID, bobToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.Equal(t, 0, getPost(t, ts, "", post.ID).CommentsCount)
	})
}

func TestFavorites(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ts *testutil.TestServer) {
		aliceToken, _ := ts.CreateAndLogin(t, "alice")
		bobToken, _ := ts.CreateAndLogin(t, "bob")
		post := createPost(t, ts, aliceToken, "T")

		res, body := ts.SendRequest(t, http.MethodPost, "/favorites/"+post.ID, bobToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.JSONEq(t, `{"status":"added"}`, body)

		res, _ = ts.SendRequest(t, http.MethodPost, "/favorites/"+post.ID, bobToken, nil)
		assert.Equal(t, http.StatusConflict, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodPost, "/favorites/missing", bobToken, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		assert.True(t, getPost(t, ts, bobToken, post.ID).IsFavorited)
		assert.False(t, getPost(t, ts, aliceToken, post.ID).IsFavorited)

		var favs []dto.PostResponse
		_, body = ts.SendRequest(t, http.MethodGet, "/favorites", bobToken, nil)
		testutil.Decode(t, body, &favs)
		require.Len(t, favs, 1)
		assert.True(t, favs[0].IsFavorited)

		res, body = ts.SendRequest(t, http.MethodDelete, "/favorites/"+post.ID, bobToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.JSONEq(t, `{"status":"removed"}`, body)

		res, _ = ts.SendRequest(t, http.MethodDelete, "/favorites/"+post.ID, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		assert.False(t, getPost(t, ts, bobToken, post.ID).IsFavorited)
	})
}

func TestDeleteUser(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ts *testutil.TestServer) {
		aliceToken, aliceID := ts.CreateAndLogin(t, "alice")
		bobToken, bobID := ts.CreateAndLogin(t, "bob")
		post := createPost(t, ts, aliceToken, "T")
		res, _ := ts.SendRequest(t, http.MethodPost, "/favorites/"+post.ID, bobToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodDelete, "/users/"+bobID, aliceToken, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		res, body := ts.SendRequest(t, http.MethodDelete, "/users/"+aliceID, aliceToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		res, _ = ts.SendRequest(t, http.MethodGet, "/users/"+aliceID, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		res, _ = ts.SendRequest(t, http.MethodGet, "/posts/"+post.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		var favs []dto.PostResponse
		_, body = ts.SendRequest(t, http.MethodGet, "/favorites", bobToken, nil)
		testutil.Decode(t, body, &favs)
		assert.Empty(t, favs)

		// The deleted user's token no longer authenticates.
		res, _ = ts.SendRequest(t, http.MethodGet, "/users/me", aliceToken, nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestUploads(t *testing.T) {
	ts := testutil.NewTestServer(t, config.DriverMemory)
	token, _ := ts.CreateAndLogin(t, "alice")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1024, 512))))

	res, body := ts.SendFile(t, "/uploads/avatar", token, "me.png", img.Bytes())
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var uploaded dto.UploadResponse
	testutil.Decode(t, body, &uploaded)
	assert.True(t, strings.HasPrefix(uploaded.URL, "/static/uploads/avatars/avatar_"), uploaded.URL)

	_, body = ts.SendRequest(t, http.MethodGet, "/users/me", token, nil)
	var me dto.UserResponse
	testutil.Decode(t, body, &me)
	require.NotNil(t, me.AvatarURL)
	assert.Equal(t, uploaded.URL, *me.AvatarURL)

	served, err := ts.Server.Client().Get(ts.Server.URL + uploaded.URL)
	require.NoError(t, err)
	defer served.Body.Close()
	assert.Equal(t, http.StatusOK, served.StatusCode)
	data, err := io.ReadAll(served.Body)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, ts.Config.Upload.AvatarMaxDimension, cfg.Width)

	res, body = ts.SendFile(t, "/uploads/image", token, "photo.webp", []byte("RIFF....WEBP"))
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	testutil.Decode(t, body, &uploaded)
	assert.Regexp(t, `^/static/uploads/images/post_[0-9a-f]{8}\.webp$`, uploaded.URL)

	// The uploaded image can be linked from a post.
	res, body = ts.SendRequest(t, http.MethodPost, "/posts", token, map[string]string{
		"title": "pic", "content": "see image", "image_url": uploaded.URL,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var post dto.PostResponse
	testutil.Decode(t, body, &post)
	require.NotNil(t, post.ImageURL)
	assert.Equal(t, uploaded.URL, *post.ImageURL)

	res, body = ts.SendFile(t, "/uploads/image", token, "script.sh", []byte("#!/bin/sh"))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Invalid file type", errorOf(t, body).Error.Message)

	res, _ = ts.SendRequest(t, http.MethodPost, "/uploads/image", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = ts.SendFile(t, "/uploads/image", "", "a.png", img.Bytes())
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestUploads_TooLarge(t *testing.T) {
	ts := testutil.NewTestServer(t, config.DriverMemory)
	token, _ := ts.CreateAndLogin(t, "alice")

	big := bytes.Repeat([]byte{0}, int(ts.Config.Upload.MaxSize)+1)
	res, body := ts.SendFile(t, "/uploads/image", token, "big.jpg", big)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "File too large (max 5MB)", errorOf(t, body).Error.Message)
}
