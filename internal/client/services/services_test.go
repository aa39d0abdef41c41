package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/form"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophstore/internal/client/search"
	"github.com/dmitrijs2005/gophstore/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// backend records the order of requests it receives.
type backend struct {
	mu       sync.Mutex
	requests []string
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
	b.mu.Unlock()
	b.handler(w, r)
}

func (b *backend) log() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func newHTTPClient(t *testing.T, b *backend) *client.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	gw, err := client.NewGateway(client.GatewayOptions{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client.NewHTTPClient(gw)
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, pngHeader, 0o600))
	return p
}

func TestSave_OrderRecordUploadDelete(t *testing.T) {
	var uploaded int
	b := &backend{}
	b.handler = func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "updateOrCreateProduct"):
			_, _ = w.Write([]byte(`{"data":{"id":42,"reference":"R1"}}`))
		case strings.Contains(r.URL.Path, "saveImages"):
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			uploaded = len(r.MultipartForm.File)
			assert.Equal(t, "database", r.FormValue("save_location"))
		}
	}
	svc := NewProductService(newHTTPClient(t, b), ProductOptions{SaveLocation: "database"})

	id := int64(42)
	existing := &models.Product{ID: &id, Images: []models.ProductImage{{ID: 7}, {ID: 8}}}
	f := form.FromProduct(*existing)
	f.Reference, f.Description, f.CostoPrice = "R1", "Mug", "3"

	tr := svc.NewTracker(existing)
	dir := t.TempDir()
	tr.AddLocalImage(writePNG(t, dir, "a.png"))
	tr.AddLocalImage(writePNG(t, dir, "b.png"))
	_, err := tr.ToggleRemoval(7)
	require.NoError(t, err)

	res := svc.Save(context.Background(), f, nil, tr)
	require.NoError(t, res.Err())
	assert.True(t, res.Saved())
	assert.EqualValues(t, 42, *res.Product.ID)

	assert.Equal(t, []string{
		"POST /api/productos/updateOrCreateProduct",
		"POST /api/productos/saveImages/42",
		"DELETE /api/productos/deleteImage/7",
	}, b.log())
	assert.Equal(t, 2, uploaded)
	assert.True(t, tr.Empty())
}

func TestSave_InvalidFormMakesNoRequest(t *testing.T) {
	b := &backend{handler: func(http.ResponseWriter, *http.Request) {}}
	svc := NewProductService(newHTTPClient(t, b), ProductOptions{})

	f := form.New()
	f.Description, f.CostoPrice = "x", "-5"
	res := svc.Save(context.Background(), f, nil, svc.NewTracker(nil))

	require.Len(t, res.Invalid, 2)
	assert.False(t, res.Saved())
	var verrs form.ValidationErrors
	assert.True(t, errors.As(res.Err(), &verrs))
	assert.Empty(t, b.log())
}

func TestSave_RecordFailureSkipsImages(t *testing.T) {
	b := &backend{handler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"reference already exists"}`))
	}}
	svc := NewProductService(newHTTPClient(t, b), ProductOptions{})

	f := &form.ProductForm{Reference: "R", Description: "D", CostoPrice: "1"}
	tr := svc.NewTracker(nil)
	tr.AddLocalImage("/does/not/matter.png")

	res := svc.Save(context.Background(), f, nil, tr)
	var apiErr *client.APIError
	require.ErrorAs(t, res.ProductErr, &apiErr)
	assert.Equal(t, "reference already exists", apiErr.Message)
	assert.Len(t, b.log(), 1)
	assert.False(t, tr.Empty())
}

func TestSave_ImageFailureKeepsRecord(t *testing.T) {
	b := &backend{}
	b.handler = func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "updateOrCreateProduct") {
			_, _ = w.Write([]byte(`{"data":{"id":5}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}
	svc := NewProductService(newHTTPClient(t, b), ProductOptions{})

	f := &form.ProductForm{Reference: "R", Description: "D", CostoPrice: "1"}
	tr := svc.NewTracker(nil)
	tr.AddLocalImage(writePNG(t, t.TempDir(), "a.png"))

	res := svc.Save(context.Background(), f, nil, tr)
	assert.True(t, res.Saved())
	assert.Error(t, res.ImagesErr)
	assert.Equal(t, res.ImagesErr, res.Err())
	require.NotNil(t, f.ID)
	assert.EqualValues(t, 5, *f.ID)
}

func TestFilterFetcher_ZeroBasedWirePage(t *testing.T) {
	var got []client.FilterRequest
	b := &backend{}
	b.handler = func(w http.ResponseWriter, r *http.Request) {
		var req client.FilterRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = append(got, req)
		if req.PageNum < 2 {
			items := make([]string, 10)
			for i := range items {
				items[i] = `{"reference":"r"}`
			}
			_, _ = w.Write([]byte(`{"products":[` + strings.Join(items, ",") + `]}`))
			return
		}
		_, _ = w.Write([]byte(`{"products":[]}`))
	}
	svc := NewProductService(newHTTPClient(t, b), ProductOptions{PerPage: 10})
	list := svc.NewProductList(search.Query{Text: "mug", Field: search.FieldReference})

	for i := 0; i < 4; i++ {
		_, err := list.LoadNext(context.Background())
		require.NoError(t, err)
	}

	assert.Len(t, list.Items(), 20)
	assert.True(t, list.Exhausted())
	require.Len(t, got, 3)
	for i, req := range got {
		assert.Equal(t, i, req.PageNum)
		assert.Equal(t, 10, req.PageSize)
		assert.Equal(t, 1, req.FiltersCount)
		assert.Equal(t, "reference", req.FilterGroups[0].Field)
	}
}

func TestSearchFetcher_FollowsNextPointer(t *testing.T) {
	b := &backend{}
	b.handler = func(w http.ResponseWriter, r *http.Request) {
		var req client.SearchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.IncludeImages)
		if req.Page == 1 {
			_, _ = w.Write([]byte(`{"data":{"data":[{"reference":"a"}],"next_page_url":"x?page=2"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"data":[{"reference":"b"}],"next_page_url":null}}`))
	}
	svc := NewProductService(newHTTPClient(t, b), ProductOptions{})
	list := svc.NewSearchList("mug")

	for i := 0; i < 3; i++ {
		_, err := list.LoadNext(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, list.Items(), 2)
	assert.True(t, list.Exhausted())
	assert.Len(t, b.log(), 2)
}

func TestCatalog_FetchedOnce(t *testing.T) {
	b := &backend{handler: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"categoria":[{"id":1,"description":"Food"}],"unidad":[],"tax":[]}}`))
	}}
	svc := NewProductService(newHTTPClient(t, b), ProductOptions{})

	for i := 0; i < 2; i++ {
		c, err := svc.Catalog(context.Background())
		require.NoError(t, err)
		assert.True(t, c.HasCategory("1"))
	}
	assert.Len(t, b.log(), 1)
}

type fakeLister struct {
	pages map[int]client.CharacterPage
	calls int
}

func (f *fakeLister) ListCharacters(_ context.Context, page int) (client.CharacterPage, error) {
	f.calls++
	return f.pages[page], nil
}

func TestCharacterList(t *testing.T) {
	l := &fakeLister{pages: map[int]client.CharacterPage{
		1: {Characters: []models.Character{{ID: 1}}, Next: "p2"},
		2: {Characters: []models.Character{{ID: 2}}},
	}}
	list := NewCharacterService(l).NewList()
	for i := 0; i < 3; i++ {
		_, err := list.LoadNext(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, list.Items(), 2)
	assert.Equal(t, 2, l.calls)
}

// ---- auth ----

type fakeAuthClient struct {
	client.Client
	token   string
	err     error
	lastReq client.LoginRequest
}

func (f *fakeAuthClient) Login(_ context.Context, req client.LoginRequest) (string, error) {
	f.lastReq = req
	return f.token, f.err
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, client.RunMigrations(context.Background(), db))
	return session.New(metadata.NewSQLiteRepository(db), nil)
}

func TestAuth_LoginRememberAndLogout(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t)
	fc := &fakeAuthClient{token: "jwt"}
	svc := NewAuthService(fc, sess, nil)

	pw := []byte("secret")
	require.NoError(t, svc.Login(ctx, " 7 ", "a@b.c", pw, true))
	assert.Equal(t, client.LoginRequest{IDEmpresa: "7", Email: "a@b.c", Password: "secret"}, fc.lastReq)
	assert.Equal(t, "jwt", sess.AccessToken())
	assert.Equal(t, make([]byte, 6), pw)

	company, email, ok, err := svc.Remembered(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", company)
	assert.Equal(t, "a@b.c", email)

	require.NoError(t, svc.Logout(ctx, true))
	assert.Empty(t, sess.AccessToken())
	_, _, ok, err = svc.Remembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuth_LoginWithoutRememberForgets(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t)
	require.NoError(t, sess.Remember(ctx, "1", "old@x"))

	svc := NewAuthService(&fakeAuthClient{token: "t"}, sess, nil)
	require.NoError(t, svc.Login(ctx, "1", "new@x", []byte("p"), false))

	_, _, ok, err := svc.Remembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuth_LoginErrors(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t)

	svc := NewAuthService(&fakeAuthClient{}, sess, nil)
	assert.ErrorIs(t, svc.Login(ctx, "", "a@b", []byte("p"), false), ErrMissingCredentials)
	assert.ErrorIs(t, svc.Login(ctx, "1", "a@b", nil, false), ErrMissingCredentials)

	failing := NewAuthService(&fakeAuthClient{err: &client.APIError{Status: 401, Message: "bad credentials"}}, sess, nil)
	err := failing.Login(ctx, "1", "a@b", []byte("p"), false)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, sess.AccessToken())
}
