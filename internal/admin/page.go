package admin

import (
	"strconv"
	"strings"

	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/view"
)

// Snapshot is everything the admin page shows.
type Snapshot struct {
	AppName    string
	Extensions []string
	Topics     []hooks.TopicInfo
	Transforms []models.KeyInfo
	Reloads    []string // reload subscription labels, in run order
	Last       *reload.Report
}

// Page renders the admin overview.
func Page(s Snapshot) gomponents.Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				TitleEl(gomponents.Text(s.AppName+" admin")),
				Link(Rel("stylesheet"), Href("/assets/css/site.css")),
				Script(Src("https://unpkg.com/htmx.org@2.0.4"), Defer()),
			),
			Body(
				Class("Admin"),
				Main(
					Class("Page"),
					H1(gomponents.Text(s.AppName+" admin")),
					Button(
						Class("Admin__reload"),
						hx.Post("/_admin/reload"),
						hx.Target("#reload-report"),
						hx.Swap("outerHTML"),
						gomponents.Text("Reload now"),
					),
					view.AdaptTemplToGomponent(ReportFragment(s.Last)),
					section("Extensions", list(s.Extensions)),
					section("Reload order", list(s.Reloads)),
					section("Hook topics", topicTable(s.Topics)),
					section("Transformers", transformTable(s.Transforms)),
				),
			),
		),
	)
}

func section(title string, body gomponents.Node) gomponents.Node {
	return Section(H2(gomponents.Text(title)), body)
}

func list(items []string) gomponents.Node {
	if len(items) == 0 {
		return P(gomponents.Text("None."))
	}
	return Ol(gomponents.Map(items, func(item string) gomponents.Node {
		return Li(gomponents.Text(item))
	}))
}

func topicTable(topics []hooks.TopicInfo) gomponents.Node {
	return Table(
		THead(Tr(Th(gomponents.Text("Topic")), Th(gomponents.Text("Handlers")), Th(gomponents.Text("Owners")))),
		TBody(gomponents.Map(topics, func(t hooks.TopicInfo) gomponents.Node {
			return Tr(
				Td(Code(gomponents.Text(t.Topic))),
				Td(gomponents.Text(strconv.Itoa(t.Handlers))),
				Td(gomponents.Text(strings.Join(t.Owners, ", "))),
			)
		})),
	)
}

func transformTable(keys []models.KeyInfo) gomponents.Node {
	return Table(
		THead(Tr(Th(gomponents.Text("Type")), Th(gomponents.Text("Variant")), Th(gomponents.Text("Owner")))),
		TBody(gomponents.Map(keys, func(k models.KeyInfo) gomponents.Node {
			return Tr(
				Td(Code(gomponents.Text(k.Type))),
				Td(gomponents.Text(k.Variant)),
				Td(gomponents.Text(k.Owner)),
			)
		})),
	)
}
