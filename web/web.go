// Package web serves the booking page as server-rendered HTML.
package web

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"conference-booking/page"
)

type Server struct {
	api  page.BookingAPI
	log  *logrus.Logger
	tmpl *template.Template
}

func New(api page.BookingAPI, log *logrus.Logger) *Server {
	return &Server{
		api:  api,
		log:  log,
		tmpl: template.Must(template.New("page").Parse(pageTemplate)),
	}
}

func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Show)
	app.Post("/", s.Book)
}

// Show renders the page with a freshly loaded bookings list.
func (s *Server) Show(c *fiber.Ctx) error {
	p := page.New(s.api, s.log)
	p.Load(c.UserContext())
	return s.render(c, p)
}

// Book submits the posted form. A failed submission re-renders the typed
// values next to the current bookings list.
func (s *Server) Book(c *fiber.Ctx) error {
	ctx := c.UserContext()

	p := page.New(s.api, s.log)
	p.Form = formFromRequest(c)
	p.Submit(ctx)
	if p.State != page.StateSucceeded {
		p.Load(ctx)
	}

	status := fiber.StatusOK
	if p.State == page.StateFailed {
		status = fiber.StatusUnprocessableEntity
	}
	return s.render(c.Status(status), p)
}

func (s *Server) render(c *fiber.Ctx, p *page.Page) error {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, p); err != nil {
		s.log.WithError(err).Error("rendering booking page failed")
		return fiber.NewError(fiber.StatusInternalServerError, "cannot render page")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func formFromRequest(c *fiber.Ctx) page.Form {
	tickets, err := strconv.Atoi(strings.TrimSpace(c.FormValue("tickets")))
	if err != nil {
		tickets = 0
	}
	return page.Form{
		FirstName: strings.TrimSpace(c.FormValue("firstName")),
		LastName:  strings.TrimSpace(c.FormValue("lastName")),
		Email:     strings.TrimSpace(c.FormValue("email")),
		Tickets:   tickets,
	}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Conference Booking App</title>
</head>
<body>
<main>
<h1>🎟 Conference Booking App</h1>
{{range .Notices}}<div class="toast toast-{{.Kind}}" role="status">{{.Text}}</div>
{{end}}
<form method="post" action="/">
<input name="firstName" placeholder="First Name" value="{{.Form.FirstName}}">
<input name="lastName" placeholder="Last Name" value="{{.Form.LastName}}">
<input name="email" type="email" placeholder="Email" value="{{.Form.Email}}">
<input name="tickets" type="number" min="1" placeholder="Number of Tickets" value="{{.Form.Tickets}}">
<button type="submit">Book Tickets</button>
</form>
<h2>All Bookings</h2>
<table>
<thead>
<tr><th>ID</th><th>First Name</th><th>Last Name</th><th>Email</th><th>Tickets</th><th>Conference</th></tr>
</thead>
<tbody>
{{range .Bookings}}<tr><td>{{.ID}}</td><td>{{.FirstName}}</td><td>{{.LastName}}</td><td>{{.Email}}</td><td>{{.NumberOfTickets}}</td><td>{{.Conference.Name}}</td></tr>
{{end}}</tbody>
</table>
</main>
</body>
</html>
`
