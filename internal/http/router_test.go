package http

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog/internal/account"
	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/auth/authtest"
	"github.com/redmonkez12/go-blog/internal/avatar"
	"github.com/redmonkez12/go-blog/internal/config"
	"github.com/redmonkez12/go-blog/internal/logging"
	"github.com/redmonkez12/go-blog/internal/post"
	"github.com/redmonkez12/go-blog/internal/user"
	"github.com/redmonkez12/go-blog/internal/web"
	"github.com/redmonkez12/go-blog/templates"
)

type fakePosts struct {
	posts []post.Post
}

func (f *fakePosts) page(items []post.Post, page, perPage int) *post.Page {
	p := &post.Page{Number: page, PerPage: perPage, Total: len(items)}
	start := (page - 1) * perPage
	if start < len(items) {
		end := min(start+perPage, len(items))
		p.Items = items[start:end]
	}
	return p
}

func (f *fakePosts) ListRecent(_ context.Context, page, perPage int) (*post.Page, error) {
	return f.page(f.posts, page, perPage), nil
}

func (f *fakePosts) ListByAuthor(_ context.Context, authorID uuid.UUID, page, perPage int) (*post.Page, error) {
	var mine []post.Post
	for _, p := range f.posts {
		if p.Author.ID == authorID {
			mine = append(mine, p)
		}
	}
	return f.page(mine, page, perPage), nil
}

type testApp struct {
	router    http.Handler
	harness   *authtest.Harness
	posts     *fakePosts
	avatarDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	avatarDir := t.TempDir()
	cfg := &config.Config{
		Avatar: config.AvatarConfig{
			Backend:        "disk",
			Dir:            avatarDir,
			DefaultImage:   user.DefaultImageFile,
			Size:           125,
			MaxUploadBytes: 1 << 20,
			PublicURL:      "/static/profile_pics",
		},
	}

	h := authtest.NewHarness(t)
	saver := avatar.NewSaver(avatar.NewDiskStore(avatarDir), cfg.Avatar)
	accounts := account.NewService(h.Users, saver)
	posts := &fakePosts{}

	renderer, err := web.NewRenderer(templates.FS, saver.URL)
	require.NoError(t, err)

	logger := logging.NewNop()
	webHandler := web.NewHandler(h.Service, accounts, posts, renderer, logger, false, cfg.Avatar.MaxUploadBytes)
	router, err := NewRouter(cfg, webHandler, auth.NewMiddleware(h.Service, false), logger)
	require.NoError(t, err)

	return &testApp{router: router, harness: h, posts: posts, avatarDir: avatarDir}
}

func (a *testApp) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(t *testing.T, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func (a *testApp) postForm(t *testing.T, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req, cookies...)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// followFlash renders the redirect target with the flash cookie just set
func (a *testApp) followFlash(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code)
	flash := cookieNamed(rec, "flash")
	require.NotNil(t, flash, "expected a flash cookie")
	return a.get(t, rec.Header().Get("Location"), flash).Body.String()
}

func (a *testApp) addUser(t *testing.T, username, email, password string) *user.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return a.harness.Users.Add(&user.User{Username: username, Email: email, PasswordHash: hash})
}

func (a *testApp) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := a.postForm(t, "/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(t, http.StatusFound, rec.Code)
	session := cookieNamed(rec, auth.SessionCookieName)
	require.NotNil(t, session)
	return session
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestLogin_WrongPasswordShowsGenericFlash(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "alice", "alice@example.com", "right")

	rec := app.postForm(t, "/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login Unsuccessful. Please check email and password")
	assert.Nil(t, cookieNamed(rec, auth.SessionCookieName))
	assert.Equal(t, 0, app.harness.Sessions.Count())
}

func TestAccount_RequiresLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/account")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Faccount", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "Account Info")
}

func TestLogin_RedirectsToNextAndShowsAccount(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "alice", "alice@example.com", "pw")

	rec := app.postForm(t, "/login?next=%2Faccount", url.Values{"email": {"alice@example.com"}, "password": {"pw"}, "remember": {"y"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/account", rec.Header().Get("Location"))

	session := cookieNamed(rec, auth.SessionCookieName)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Greater(t, session.MaxAge, 0, "remember me sets a persistent cookie")

	page := app.get(t, "/account", session)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `value="alice"`)
	assert.Contains(t, page.Body.String(), "/static/profile_pics/default.jpg")

	// Logged-in users are sent away from anonymous pages
	assert.Equal(t, http.StatusFound, app.get(t, "/login", session).Code)
}

func TestLogin_IgnoresForeignNext(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "alice", "alice@example.com", "pw")

	rec := app.postForm(t, "/login?next=https%3A%2F%2Fevil.example", url.Values{"email": {"alice@example.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "alice", "alice@example.com", "pw")
	session := app.login(t, "alice@example.com", "pw")

	rec := app.get(t, "/logout", session)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 0, app.harness.Sessions.Count())

	assert.Equal(t, http.StatusFound, app.get(t, "/account", session).Code)
}

func TestRegistrationFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm(t, "/register", url.Values{"username": {"alice"}, "email": {"alice@example.com"}})
	assert.Contains(t, app.followFlash(t, rec), "Please check your email to create your account.")
	assert.Equal(t, 0, app.harness.Users.Count())

	msg, ok := app.harness.Mailer.Last()
	require.True(t, ok)
	link := "/verify_account/" + msg.Token

	form := app.get(t, link)
	assert.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), "Choose Password")

	mismatch := app.postForm(t, link, url.Values{"password": {"pw123"}, "confirm_password": {"pw999"}})
	assert.Equal(t, http.StatusOK, mismatch.Code)
	assert.Contains(t, mismatch.Body.String(), "Field must be equal to password.")

	rec = app.postForm(t, link, url.Values{"password": {"pw123"}, "confirm_password": {"pw123"}})
	assert.Contains(t, app.followFlash(t, rec), "Account created")

	created, err := app.harness.Users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(created.PasswordHash, "pw123"))

	rec = app.postForm(t, link, url.Values{"password": {"pw456"}, "confirm_password": {"pw456"}})
	assert.Contains(t, app.followFlash(t, rec), "Invalid or Expired link")
	assert.Equal(t, 1, app.harness.Users.Count())
}

func TestRegister_ValidationAndTakenNames(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "alice", "alice@example.com", "pw")

	rec := app.postForm(t, "/register", url.Values{"username": {"a"}, "email": {"not-an-email"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Field must be at least 2 characters long.")
	assert.Contains(t, rec.Body.String(), "Invalid email address.")

	rec = app.postForm(t, "/register", url.Values{"username": {"alice"}, "email": {"alice@example.com"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "That username is taken. Please choose a different one.")
	assert.Contains(t, rec.Body.String(), "That email is taken. Please choose a different one.")
	assert.Empty(t, app.harness.Mailer.Messages())
}

func TestVerifyAccount_BadToken(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/verify_account/not-a-token")
	assert.Contains(t, app.followFlash(t, rec), "Invalid or Expired link")
}

func TestPasswordResetFlow(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "alice", "alice@example.com", "old")

	rec := app.postForm(t, "/reset_password", url.Values{"email": {"nobody@example.com"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "There is no account with that email. You must register first.")

	rec = app.postForm(t, "/reset_password", url.Values{"email": {"alice@example.com"}})
	assert.Contains(t, app.followFlash(t, rec), "Check your e-mail to reset your password.")

	msg, ok := app.harness.Mailer.Last()
	require.True(t, ok)
	link := "/reset_password/" + msg.Token

	assert.Contains(t, app.get(t, link).Body.String(), "Reset Password")

	rec = app.postForm(t, link, url.Values{"password": {"new"}, "confirm_password": {"new"}})
	assert.Contains(t, app.followFlash(t, rec), "Password updated")

	rec = app.get(t, link)
	assert.Contains(t, app.followFlash(t, rec), "Invalid or Expired link")

	app.login(t, "alice@example.com", "new")
}

func TestPasswordReset_ExpiredLink(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "alice", "alice@example.com", "old")

	rec := app.postForm(t, "/reset_password", url.Values{"email": {"alice@example.com"}})
	require.Equal(t, http.StatusFound, rec.Code)
	msg, _ := app.harness.Mailer.Last()

	app.harness.Clock.Advance(authtest.TokenLifetime + time.Minute)

	rec = app.postForm(t, "/reset_password/"+msg.Token, url.Values{"password": {"new"}, "confirm_password": {"new"}})
	assert.Contains(t, app.followFlash(t, rec), "Invalid or Expired link")
}

func pngUpload(t *testing.T, fields map[string]string, filename string, w, h int) (*bytes.Buffer, string) {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, w, h))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("picture", filename)
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestAccount_UpdateWithPicture(t *testing.T) {
	app := newTestApp(t)
	alice := app.addUser(t, "alice", "alice@example.com", "pw")
	session := app.login(t, "alice@example.com", "pw")

	body, contentType := pngUpload(t, map[string]string{"username": "alice2", "email": "alice2@example.com"}, "me.png", 400, 400)
	req := httptest.NewRequest(http.MethodPost, "/account", body)
	req.Header.Set("Content-Type", contentType)
	rec := app.do(t, req, session)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/account", rec.Header().Get("Location"))

	updated, err := app.harness.Users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Regexp(t, `^[0-9a-f]{16}\.png$`, updated.ImageFile)
	_, err = os.Stat(filepath.Join(app.avatarDir, updated.ImageFile))
	assert.NoError(t, err)

	page := app.get(t, "/account", session, cookieNamed(rec, "flash"))
	assert.Contains(t, page.Body.String(), "Your account has been updated")
	assert.Contains(t, page.Body.String(), "/static/profile_pics/"+updated.ImageFile)

	served := app.get(t, "/static/profile_pics/"+updated.ImageFile)
	assert.Equal(t, http.StatusOK, served.Code)
}

func TestAccount_RejectsBadPictureAndTakenName(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "alice", "alice@example.com", "pw")
	app.addUser(t, "bob", "bob@example.com", "pw")
	session := app.login(t, "alice@example.com", "pw")

	body, contentType := pngUpload(t, map[string]string{"username": "alice", "email": "alice@example.com"}, "me.gif", 10, 10)
	req := httptest.NewRequest(http.MethodPost, "/account", body)
	req.Header.Set("Content-Type", contentType)
	rec := app.do(t, req, session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "File does not have an approved extension: jpg, jpeg, png")

	rec = app.postForm(t, "/account", url.Values{"username": {"bob"}, "email": {"alice@example.com"}}, session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "That username is taken. Please choose a different one.")
}

func TestUserPosts(t *testing.T) {
	app := newTestApp(t)
	alice := app.addUser(t, "alice", "alice@example.com", "pw")
	for i := 0; i < 7; i++ {
		app.posts.posts = append(app.posts.posts, post.Post{
			ID:         int64(i + 1),
			Title:      "Post " + string(rune('A'+i)),
			DatePosted: time.Date(2024, 1, 7-i, 0, 0, 0, 0, time.UTC),
			Author:     post.Author{ID: alice.ID, Username: "alice", ImageFile: user.DefaultImageFile},
		})
	}

	first := app.get(t, "/user/alice")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "Posts by alice (7)")
	assert.Contains(t, first.Body.String(), "Post E")
	assert.NotContains(t, first.Body.String(), "Post F")
	assert.Contains(t, first.Body.String(), `href="/user/alice?page=2"`)

	second := app.get(t, "/user/alice?page=2")
	assert.Contains(t, second.Body.String(), "Post G")

	assert.Equal(t, http.StatusOK, app.get(t, "/user/alice?page=abc").Code)
	assert.Equal(t, http.StatusNotFound, app.get(t, "/user/alice?page=3").Code)
	assert.Equal(t, http.StatusNotFound, app.get(t, "/user/nobody").Code)

	assert.Equal(t, http.StatusOK, app.get(t, "/").Code)
	assert.Equal(t, http.StatusOK, app.get(t, "/home?page=2").Code)
}

func TestUserPosts_PaginationEscapesUsername(t *testing.T) {
	app := newTestApp(t)
	jo := app.addUser(t, "jo#1", "jo@example.com", "pw")
	for i := 0; i < 6; i++ {
		app.posts.posts = append(app.posts.posts, post.Post{
			ID:     int64(i + 1),
			Title:  "Post",
			Author: post.Author{ID: jo.ID, Username: jo.Username, ImageFile: user.DefaultImageFile},
		})
	}

	rec := app.get(t, "/user/jo%231")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/user/jo%231?page=2"`)
	assert.NotContains(t, rec.Body.String(), `href="/user/jo#1?page=2"`)
	assert.Contains(t, rec.Body.String(), `href="/user/jo%231">jo#1</a>`)
}

func TestCrossOriginPostRejected(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.c&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := app.do(t, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "That page does not exist.")
}
