package web

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/prenos/internal/api"
	"github.com/erazemk/prenos/internal/db"
	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/store"
)

const testSecret = "web-test-secret"

type console struct {
	t      *testing.T
	db     *sql.DB
	url    string
	client *http.Client
}

func newConsole(t *testing.T) *console {
	t.Helper()
	database := db.NewTestDB(t)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	webRouter, err := NewRouter(database, testSecret, srv.URL, zap.NewNop())
	require.NoError(t, err)
	mux.Handle("/api/", api.NewRouter(database, testSecret, zap.NewNop()))
	mux.Handle("/", webRouter)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	_, err = store.CreateUser(context.Background(), database, "clerk", string(hash), model.RoleClerk)
	require.NoError(t, err)

	jar, _ := cookiejar.New(nil)
	return &console{t: t, db: database, url: srv.URL, client: &http.Client{Jar: jar}}
}

func (c *console) post(path string, form url.Values) string {
	c.t.Helper()
	resp, err := c.client.PostForm(c.url+path, form)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(c.t, http.StatusOK, resp.StatusCode, string(body))
	return string(body)
}

func (c *console) get(path string) string {
	c.t.Helper()
	resp, err := c.client.Get(c.url + path)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(c.t, http.StatusOK, resp.StatusCode, string(body))
	return string(body)
}

func (c *console) login() {
	c.t.Helper()
	body := c.post("/login", url.Values{"username": {"clerk"}, "password": {"password"}})
	require.Contains(c.t, body, "Transfers")
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	c := newConsole(t)
	body := c.get("/transfers/new")
	assert.Contains(t, body, `action="/login"`)
}

func TestLoginWrongPassword(t *testing.T) {
	c := newConsole(t)
	body := c.post("/login", url.Values{"username": {"clerk"}, "password": {"nope"}})
	assert.Contains(t, body, "Wrong username or password.")
}

func TestComposeAndSubmitTransfer(t *testing.T) {
	c := newConsole(t)
	ctx := context.Background()
	from, _ := store.CreateBranch(ctx, c.db, "Warehouse")
	to, _ := store.CreateBranch(ctx, c.db, "Shop")
	flour, _ := store.CreateProduct(ctx, c.db, "Flour", "3830001")
	sugar, _ := store.CreateProduct(ctx, c.db, "Sugar", "")
	require.NoError(t, store.AddStock(ctx, c.db, from.ID, flour.ID, 5))
	require.NoError(t, store.AddStock(ctx, c.db, from.ID, sugar.ID, 3))

	c.login()
	body := c.get("/transfers/new")
	assert.Contains(t, body, "Warehouse")
	assert.Contains(t, body, "Select a source branch")

	body = c.post("/transfers/new/source", url.Values{"branch": {id(from.ID)}})
	assert.Contains(t, body, "Flour")
	assert.Contains(t, body, "Sugar")

	body = c.get("/transfers/new?q=3830")
	assert.Contains(t, body, "Flour")
	assert.NotContains(t, body, "Sugar")

	c.post("/transfers/new/add", url.Values{"product": {flour.ID}})
	body = c.post("/transfers/new/add", url.Values{"product": {flour.ID}})
	assert.Contains(t, body, "Already added")

	body = c.post("/transfers/new/quantity", url.Values{"product": {flour.ID}, "quantity": {"999"}})
	assert.Contains(t, body, "1 products, 5 units")

	// Same branch on both sides is refused before reaching the API.
	c.post("/transfers/new/destination", url.Values{"branch": {id(from.ID)}})
	body = c.post("/transfers/new/submit", url.Values{"notes": {"restock"}})
	assert.Contains(t, body, "Source and destination branch must be different.")

	c.post("/transfers/new/destination", url.Values{"branch": {id(to.ID)}})
	body = c.post("/transfers/new/submit", url.Values{"notes": {"restock"}})
	assert.Contains(t, body, "Transfer created")
	assert.Contains(t, body, `http-equiv="refresh"`)
	assert.Contains(t, body, "No products added yet.")

	left, _ := store.GetStock(ctx, c.db, from.ID, flour.ID)
	moved, _ := store.GetStock(ctx, c.db, to.ID, flour.ID)
	assert.Equal(t, 0, left)
	assert.Equal(t, 5, moved)

	list := c.get("/transfers")
	assert.Contains(t, list, "restock")
}

func TestSourceChangeClearsLines(t *testing.T) {
	c := newConsole(t)
	ctx := context.Background()
	a, _ := store.CreateBranch(ctx, c.db, "A")
	b, _ := store.CreateBranch(ctx, c.db, "B")
	p, _ := store.CreateProduct(ctx, c.db, "Rice", "")
	require.NoError(t, store.AddStock(ctx, c.db, a.ID, p.ID, 2))

	c.login()
	c.get("/transfers/new")
	c.post("/transfers/new/source", url.Values{"branch": {id(a.ID)}})
	body := c.post("/transfers/new/add", url.Values{"product": {p.ID}})
	assert.Contains(t, body, "1 products, 1 units")

	body = c.post("/transfers/new/source", url.Values{"branch": {id(b.ID)}})
	assert.Contains(t, body, "No products added yet.")
	assert.Contains(t, body, "No products in stock")
}

func TestLogoutRevokesSession(t *testing.T) {
	c := newConsole(t)
	c.login()

	body := c.post("/logout", nil)
	assert.True(t, strings.Contains(body, `action="/login"`))

	body = c.get("/transfers")
	assert.Contains(t, body, `action="/login"`)
}
