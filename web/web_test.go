package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-booking/client"
)

var (
	tbodyPattern = regexp.MustCompile(`(?s)<tbody>(.*)</tbody>`)
	rowPattern   = regexp.MustCompile(`(?s)<tr>(.*?)</tr>`)
	cellPattern  = regexp.MustCompile(`(?s)<td>(.*?)</td>`)
)

type backend struct {
	mu         sync.Mutex
	bookStatus int
	bookBody   string
	listBody   string
	listStatus int
	bookCalls  int
	listCalls  int
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/book":
		b.bookCalls++
		w.WriteHeader(b.bookStatus)
		_, _ = w.Write([]byte(b.bookBody))
	case "/api/bookings":
		b.listCalls++
		if b.listStatus != 0 {
			w.WriteHeader(b.listStatus)
		}
		_, _ = w.Write([]byte(b.listBody))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *backend) bookings() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bookCalls
}

func newTestApp(t *testing.T, b *backend) *fiber.App {
	t.Helper()

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	app := fiber.New()
	New(client.New(srv.URL+"/api", log), log).SetupRoutes(app)
	return app
}

func get(t *testing.T, app *fiber.App) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	return do(t, app, req)
}

func post(t *testing.T, app *fiber.App, form url.Values) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func tableRows(t *testing.T, html string) [][]string {
	t.Helper()
	tbody := tbodyPattern.FindStringSubmatch(html)
	require.Len(t, tbody, 2, "page has no table body")

	rows := [][]string{}
	for _, row := range rowPattern.FindAllStringSubmatch(tbody[1], -1) {
		cells := []string{}
		for _, cell := range cellPattern.FindAllStringSubmatch(row[1], -1) {
			cells = append(cells, cell[1])
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestShowEmptyList(t *testing.T) {
	app := newTestApp(t, &backend{listBody: `[]`})

	code, html := get(t, app)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, html, "<th>ID</th><th>First Name</th><th>Last Name</th><th>Email</th><th>Tickets</th><th>Conference</th>")
	assert.Empty(t, tableRows(t, html))
}

func TestShowOneBooking(t *testing.T) {
	app := newTestApp(t, &backend{listBody: `[{"ID":7,"FirstName":"Ada","LastName":"Lovelace",` +
		`"Email":"ada@example.com","NumberOfTickets":2,"Conference":{"Name":"Go Conference"}}]`})

	_, html := get(t, app)

	assert.Equal(t, [][]string{{"7", "Ada", "Lovelace", "ada@example.com", "2", "Go Conference"}}, tableRows(t, html))
}

func TestShowEscapesBackendData(t *testing.T) {
	app := newTestApp(t, &backend{listBody: `[{"ID":1,"FirstName":"<script>alert(1)</script>","LastName":"X",` +
		`"Email":"x@example.com","NumberOfTickets":1,"Conference":{"Name":"Go Conference"}}]`})

	_, html := get(t, app)

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;alert(1)&lt;/script&gt;")
}

func TestShowListFailure(t *testing.T) {
	app := newTestApp(t, &backend{listStatus: http.StatusInternalServerError, listBody: `{"error":"Failed to fetch bookings"}`})

	code, html := get(t, app)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, html, `<div class="toast toast-error" role="status">Failed to fetch bookings</div>`)
	assert.Empty(t, tableRows(t, html))
}

func TestBookWithMissingFieldIssuesNoBooking(t *testing.T) {
	b := &backend{bookStatus: http.StatusCreated, bookBody: `{"message":"ok"}`, listBody: `[]`}
	app := newTestApp(t, b)

	code, html := post(t, app, url.Values{
		"firstName": {"Ada"},
		"lastName":  {""},
		"email":     {"ada@example.com"},
		"tickets":   {"2"},
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Zero(t, b.bookings())
	assert.Contains(t, html, "Please fill all fields correctly!")
	assert.Contains(t, html, `value="Ada"`)
	assert.Contains(t, html, `value="ada@example.com"`)
}

func TestBookWithInvalidEmailIssuesNoBooking(t *testing.T) {
	b := &backend{bookStatus: http.StatusCreated, bookBody: `{"message":"ok"}`, listBody: `[]`}
	app := newTestApp(t, b)

	code, html := post(t, app, url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example"},
		"tickets":   {"2"},
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Zero(t, b.bookings())
	assert.Contains(t, html, "Please enter a valid email")
}

func TestBookSuccessResetsForm(t *testing.T) {
	b := &backend{
		bookStatus: http.StatusCreated,
		bookBody:   `{"message":"ok"}`,
		listBody: `[{"ID":1,"FirstName":"Ada","LastName":"Lovelace","Email":"ada@example.com",` +
			`"NumberOfTickets":2,"Conference":{"Name":"Go Conference"}}]`,
	}
	app := newTestApp(t, b)

	code, html := post(t, app, url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example.com"},
		"tickets":   {"2"},
	})

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 1, b.bookings())
	assert.Contains(t, html, `<div class="toast toast-success" role="status">ok</div>`)
	assert.Contains(t, html, `name="firstName" placeholder="First Name" value=""`)
	assert.Contains(t, html, `name="email" type="email" placeholder="Email" value=""`)
	assert.Contains(t, html, `placeholder="Number of Tickets" value="1"`)
	assert.Len(t, tableRows(t, html), 1)
}

func TestBookBackendErrorKeepsForm(t *testing.T) {
	b := &backend{bookStatus: http.StatusBadRequest, bookBody: `{"error":"invalid"}`, listBody: `[]`}
	app := newTestApp(t, b)

	code, html := post(t, app, url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example.com"},
		"tickets":   {"3"},
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Equal(t, 1, b.bookings())
	assert.Contains(t, html, `<div class="toast toast-error" role="status">invalid</div>`)
	assert.Contains(t, html, `name="lastName" placeholder="Last Name" value="Lovelace"`)
	assert.Contains(t, html, `placeholder="Number of Tickets" value="3"`)
}
