package router

import (
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/routepath"
)

// Views are the page components of the default route table.
type Views struct {
	Calculadora   app.View
	Estadisticas  app.View
	Convocatorias app.View
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes(views Views) []Route {
	return []Route{
		{Path: routepath.Calculadora, Name: routepath.NameCalculadora, Component: views.Calculadora},
		{Path: routepath.Estadisticas, Name: routepath.NameEstadisticas, Component: views.Estadisticas},
		{Path: routepath.Convocatorias, Name: routepath.NameConvocatorias, Component: views.Convocatorias},
	}
}
