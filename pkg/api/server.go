package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/api/routes"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.DetoursRouter(group.Group("/detours"))

	return webApp.Listen(listen)
}
