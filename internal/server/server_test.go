package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopworks/go-commerce-server/internal/auth"
	"github.com/shopworks/go-commerce-server/internal/authstate"
	"github.com/shopworks/go-commerce-server/internal/config"
	"github.com/shopworks/go-commerce-server/internal/models"
	"github.com/shopworks/go-commerce-server/internal/provider"
	fakebasketrepo "github.com/shopworks/go-commerce-server/internal/repositories/baskets/repofake"
	fakemediarepo "github.com/shopworks/go-commerce-server/internal/repositories/media/repofake"
	fakeorderrepo "github.com/shopworks/go-commerce-server/internal/repositories/orders/repofake"
	fakeproductrepo "github.com/shopworks/go-commerce-server/internal/repositories/products/repofake"
	"github.com/shopworks/go-commerce-server/internal/repositories/repomanager"
	fakeuserrepo "github.com/shopworks/go-commerce-server/internal/repositories/users/repofake"
	fakewishlistrepo "github.com/shopworks/go-commerce-server/internal/repositories/wishlists/repofake"
	"github.com/shopworks/go-commerce-server/internal/server"
	"github.com/shopworks/go-commerce-server/internal/storage"
	"github.com/shopworks/go-commerce-server/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserEmail = "jane.doe@example.com"

type stubProvider struct {
	profile *provider.Profile
	err     error
}

func (s *stubProvider) AuthorizationURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + url.QueryEscape(state)
}

func (s *stubProvider) FetchProfile(_ context.Context, _ string) (*provider.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

// fakeTxRunner runs the callback against the shared fakes without a real
// transaction.
type fakeTxRunner struct {
	repos repomanager.Repos
}

func (f *fakeTxRunner) WithTx(_ context.Context, fn func(repos repomanager.Repos) error) error {
	return fn(f.repos)
}

type fakeBlobStore struct {
	uploads int
	fail    bool
}

func (f *fakeBlobStore) Upload(_ context.Context, productID int64, files []storage.ImageFile) ([]string, error) {
	if f.fail {
		return nil, fmt.Errorf("storage unavailable")
	}
	urls := make([]string, 0, len(files))
	for _, file := range files {
		// Drain the reader like the real uploader would.
		if _, err := io.ReadAll(file.Reader); err != nil {
			return nil, err
		}
		f.uploads++
		urls = append(urls, fmt.Sprintf("https://cdn.example.com/products/%d/%s", productID, file.Name))
	}
	return urls, nil
}

type testFixture struct {
	server   *server.Server
	provider *stubProvider
	users    *fakeuserrepo.FakeUserRepo
	products *fakeproductrepo.FakeProductRepo
	blobs    *fakeBlobStore
}

func setupTestServer(t *testing.T) *testFixture {
	t.Helper()

	states := authstate.NewStore()
	t.Cleanup(states.Close)

	stub := &stubProvider{profile: &provider.Profile{
		Sub:     "google-sub-1",
		Email:   testUserEmail,
		Name:    "Jane Doe",
		Picture: "https://example.com/jane.png",
	}}

	signer, err := token.NewHMACSigner("test-secret", "HS256")
	require.NoError(t, err)
	issuer := token.NewIssuer(signer, 30*time.Minute)

	repos := repomanager.Repos{
		Users:     fakeuserrepo.NewFakeUserRepo(),
		Products:  fakeproductrepo.NewFakeProductRepo(),
		Media:     fakemediarepo.NewFakeMediaRepo(),
		Orders:    fakeorderrepo.NewFakeOrderRepo(),
		Baskets:   fakebasketrepo.NewFakeBasketRepo(),
		Wishlists: fakewishlistrepo.NewFakeWishlistRepo(),
	}

	authService, err := auth.NewAuthService(states, stub, issuer, repos.Users)
	require.NoError(t, err)

	blobs := &fakeBlobStore{}
	cfg := config.Config{AppName: "Commerce API", Env: "TEST", SecretKey: "test-secret"}

	srv, err := server.New(cfg, authService, repos, &fakeTxRunner{repos: repos}, blobs, zerolog.Nop())
	require.NoError(t, err)

	return &testFixture{
		server:   srv,
		provider: stub,
		users:    repos.Users.(*fakeuserrepo.FakeUserRepo),
		products: repos.Products.(*fakeproductrepo.FakeProductRepo),
		blobs:    blobs,
	}
}

func (f *testFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeJSON[map[string]string](t, rec)
	return body["detail"]
}

// startLogin hits the login endpoint and returns the issued state.
func (f *testFixture) startLogin(t *testing.T) string {
	t.Helper()

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON[map[string]string](t, rec)
	require.NotEmpty(t, body["state"])
	require.Contains(t, body["authorization_url"], "state=")
	return body["state"]
}

// login walks the whole flow and returns the issued token pair.
func (f *testFixture) login(t *testing.T) *auth.TokenPair {
	t.Helper()

	state := f.startLogin(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet,
		"/auth/google/callback?state="+url.QueryEscape(state)+"&code=auth-code", nil))
	require.Equal(t, http.StatusOK, rec.Code, "callback body: %s", rec.Body.String())

	pair := decodeJSON[auth.TokenPair](t, rec)
	return &pair
}

func authed(req *http.Request, accessToken string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return req
}

func TestIndex(t *testing.T) {
	f := setupTestServer(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON[map[string]string](t, rec)
	assert.Equal(t, "Commerce API", body["app"])
	assert.Equal(t, "ok", body["status"])
}

func TestLoginFlow_EndToEnd(t *testing.T) {
	f := setupTestServer(t)

	pair := f.login(t)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Len(t, pair.RefreshToken, 64)

	rec := f.do(t, authed(httptest.NewRequest(http.MethodGet, "/users/me", nil), pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	me := decodeJSON[models.User](t, rec)
	assert.Equal(t, testUserEmail, me.Email)
	assert.True(t, me.IsActive)
}

func TestCallback_ReplayedStateRejected(t *testing.T) {
	f := setupTestServer(t)

	state := f.startLogin(t)

	callback := "/auth/google/callback?state=" + url.QueryEscape(state) + "&code=auth-code"
	rec := f.do(t, httptest.NewRequest(http.MethodGet, callback, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, callback, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid state parameter", detail(t, rec))
}

func TestMe_WithoutToken(t *testing.T) {
	f := setupTestServer(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Not authenticated", detail(t, rec))
}

func TestRefresh_RotationInvalidatesOldToken(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)

	body, err := json.Marshal(map[string]string{"refresh_token": pair.RefreshToken})
	require.NoError(t, err)
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rotated := decodeJSON[auth.TokenPair](t, rec)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired refresh token", detail(t, rec))
}

func TestRefresh_ExpiredToken(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)

	stored, err := f.users.GetByEmail(context.Background(), testUserEmail)
	require.NoError(t, err)
	f.users.SetRefreshTokenExpiry(stored.ID, time.Now().Add(-time.Minute))

	body, err := json.Marshal(map[string]string{"refresh_token": pair.RefreshToken})
	require.NoError(t, err)
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired refresh token", detail(t, rec))
}

func multipartProduct(t *testing.T, name, price string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", name))
	require.NoError(t, mw.WriteField("description", "a product"))
	require.NoError(t, mw.WriteField("price", price))
	for filename, content := range files {
		part, err := mw.CreateFormFile("files", filename)
		require.NoError(t, err)
		_, err = io.Copy(part, strings.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateProduct_WithImages(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)

	body, contentType := multipartProduct(t, "Mug", "9.99", map[string]string{"front.png": "png-bytes"})
	req := authed(httptest.NewRequest(http.MethodPost, "/products/", body), pair.AccessToken)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	product := decodeJSON[models.Product](t, rec)
	assert.Equal(t, "Mug", product.Name)
	assert.Equal(t, 9.99, product.Price)
	require.Len(t, product.Media, 1)
	assert.Equal(t, "https://cdn.example.com/products/1/front.png", product.Media[0].S3URL)
	assert.Equal(t, 1, f.blobs.uploads)
	require.NotNil(t, product.CreatedByID)
}

func TestCreateProduct_WithoutToken(t *testing.T) {
	f := setupTestServer(t)

	body, contentType := multipartProduct(t, "Mug", "9.99", nil)
	req := httptest.NewRequest(http.MethodPost, "/products/", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProduct_InvalidPrice(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)

	body, contentType := multipartProduct(t, "Mug", "not-a-number", nil)
	req := authed(httptest.NewRequest(http.MethodPost, "/products/", body), pair.AccessToken)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid price", detail(t, rec))
}

func TestCreateProduct_UploadFailure(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)
	f.blobs.fail = true

	body, contentType := multipartProduct(t, "Mug", "9.99", map[string]string{"front.png": "png-bytes"})
	req := authed(httptest.NewRequest(http.MethodPost, "/products/", body), pair.AccessToken)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := setupTestServer(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/products/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", detail(t, rec))
}

func TestUpdateProduct_PartialUpdate(t *testing.T) {
	f := setupTestServer(t)

	created, err := f.products.Create(context.Background(), &models.Product{
		Name: "Mug", Description: "a mug", Price: 9.99, IsActive: true,
	})
	require.NoError(t, err)

	body := strings.NewReader(`{"price": 14.99}`)
	rec := f.do(t, httptest.NewRequest(http.MethodPut, fmt.Sprintf("/products/%d", created.ID), body))
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeJSON[models.Product](t, rec)
	assert.Equal(t, 14.99, updated.Price)
	assert.Equal(t, "Mug", updated.Name, "absent fields keep stored values")
}

func TestDeleteProduct(t *testing.T) {
	f := setupTestServer(t)

	created, err := f.products.Create(context.Background(), &models.Product{Name: "Mug", Price: 1})
	require.NoError(t, err)

	rec := f.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/products/%d", created.ID), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/products/%d", created.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlist_AddListRemove(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)

	created, err := f.products.Create(context.Background(), &models.Product{Name: "Mug", Price: 1})
	require.NoError(t, err)
	path := fmt.Sprintf("/wishlist/%d", created.ID)

	rec := f.do(t, authed(httptest.NewRequest(http.MethodPost, path, nil), pair.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, authed(httptest.NewRequest(http.MethodGet, "/wishlist/", nil), pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decodeJSON[[]models.Wishlist](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, created.ID, entries[0].ProductID)

	rec = f.do(t, authed(httptest.NewRequest(http.MethodDelete, path, nil), pair.AccessToken))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, authed(httptest.NewRequest(http.MethodGet, "/wishlist/", nil), pair.AccessToken))
	entries = decodeJSON[[]models.Wishlist](t, rec)
	assert.Empty(t, entries)
}

func TestWishlist_UnknownProduct(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)

	rec := f.do(t, authed(httptest.NewRequest(http.MethodPost, "/wishlist/99", nil), pair.AccessToken))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBasket_QuantityAccumulates(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)

	created, err := f.products.Create(context.Background(), &models.Product{Name: "Mug", Price: 1})
	require.NoError(t, err)
	path := fmt.Sprintf("/basket/%d", created.ID)

	rec := f.do(t, authed(httptest.NewRequest(http.MethodPost, path+"?quantity=2", nil), pair.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, authed(httptest.NewRequest(http.MethodPost, path, nil), pair.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)

	entry := decodeJSON[models.Basket](t, rec)
	assert.Equal(t, 3, entry.Quantity)
}

func TestOrder_UsesCurrentProductPrice(t *testing.T) {
	f := setupTestServer(t)
	pair := f.login(t)

	created, err := f.products.Create(context.Background(), &models.Product{Name: "Mug", Price: 9.99})
	require.NoError(t, err)

	body := strings.NewReader(fmt.Sprintf(`{"product_id": %d}`, created.ID))
	rec := f.do(t, authed(httptest.NewRequest(http.MethodPost, "/orders/", body), pair.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)

	order := decodeJSON[models.Order](t, rec)
	assert.Equal(t, 9.99, order.Amount)

	rec = f.do(t, authed(httptest.NewRequest(http.MethodGet, "/orders/", nil), pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decodeJSON[[]models.Order](t, rec)
	assert.Len(t, orders, 1)
}

func TestCors_PreflightAllowedOrigin(t *testing.T) {
	states := authstate.NewStore()
	t.Cleanup(states.Close)

	stub := &stubProvider{profile: &provider.Profile{Email: testUserEmail}}
	signer, err := token.NewHMACSigner("test-secret", "HS256")
	require.NoError(t, err)
	issuer := token.NewIssuer(signer, 30*time.Minute)

	repos := repomanager.Repos{
		Users:     fakeuserrepo.NewFakeUserRepo(),
		Products:  fakeproductrepo.NewFakeProductRepo(),
		Media:     fakemediarepo.NewFakeMediaRepo(),
		Orders:    fakeorderrepo.NewFakeOrderRepo(),
		Baskets:   fakebasketrepo.NewFakeBasketRepo(),
		Wishlists: fakewishlistrepo.NewFakeWishlistRepo(),
	}
	authService, err := auth.NewAuthService(states, stub, issuer, repos.Users)
	require.NoError(t, err)

	cfg := config.Config{AppName: "Commerce API", Env: "TEST",
		AllowedOrigins: []string{"https://shop.example.com"}}
	srv, err := server.New(cfg, authService, repos, &fakeTxRunner{repos: repos}, &fakeBlobStore{}, zerolog.Nop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/products/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/products/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
