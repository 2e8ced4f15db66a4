package server

//go:generate swag init -g internal/server/swagger.go -o docs/swagger

// @title DCC Dev API
// @version 0.1
// @description JSON interface to the DCC Portal development slot dashboard.
// @contact.name DCC Dev Maintainers
// @contact.url https://github.com/raysh454/dccdev
// @BasePath /

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/dccdev/docs/swagger" // registers the OpenAPI document
)

func (s *Server) mountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
