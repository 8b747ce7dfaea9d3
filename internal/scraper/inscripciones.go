package scraper

import (
	"strconv"
	"strings"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const nextPageLabel = "»"

// InscripcionesPage is one parsed page of the aspirant listing.
type InscripcionesPage struct {
	Aspirants []oposicion.Aspirant
	// Skipped counts rows with enough cells but unparseable numbers.
	Skipped int
	// HasTable reports whether the page carried a listing table body.
	HasTable bool
	// NextHref is the raw href of the next-page link, empty when the
	// link is missing or disabled.
	NextHref string
}

// ParseInscripciones extracts aspirants from the first table body of doc.
// Rows need at least five cells: orden, sorteo, nombre, apellidos, turno.
func ParseInscripciones(doc *html.Node) InscripcionesPage {
	var page InscripcionesPage
	tbody := findFirst(doc, isElement(atom.Tbody))
	if tbody != nil {
		page.HasTable = true
		for _, row := range childElements(tbody, atom.Tr) {
			cells := childElements(row, atom.Td)
			if len(cells) < 5 {
				continue
			}
			aspirant, ok := parseAspirantRow(cells)
			if !ok {
				page.Skipped++
				continue
			}
			page.Aspirants = append(page.Aspirants, aspirant)
		}
	}
	page.NextHref = nextPageHref(doc)
	return page
}

func parseAspirantRow(cells []*html.Node) (oposicion.Aspirant, bool) {
	orden, err := strconv.Atoi(text(cells[0]))
	if err != nil {
		return oposicion.Aspirant{}, false
	}
	sorteo, err := strconv.Atoi(text(cells[1]))
	if err != nil {
		return oposicion.Aspirant{}, false
	}
	nombre := text(cells[2])
	apellidos := text(cells[3])
	return oposicion.Aspirant{
		NumeroOrden:     orden,
		NombreApellidos: apellidos + ", " + nombre,
		NumeroSorteo:    sorteo,
		Turno:           text(cells[4]),
	}, true
}

// nextPageHref finds the "»" pagination link. It returns "" when the link
// is absent, its parent item is disabled, or it has no followable href.
func nextPageHref(doc *html.Node) string {
	link := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.A && text(n) == nextPageLabel
	})
	if link == nil {
		return ""
	}
	if parent := link.Parent; parent != nil && hasClass(parent, "disabled") {
		return ""
	}
	href := strings.TrimSpace(attr(link, "href"))
	if href == "" || href == "#" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	return href
}
