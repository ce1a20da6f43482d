package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/psds-microservice/license-tracker/api"
	"github.com/psds-microservice/license-tracker/internal/handler"
)

const pathSwagger = "/swagger"

func New(auth *handler.AuthHandler, licenses *handler.LicenseHandler, tickets *handler.TicketHandler) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	// CORS open for all routes, matching the original frontend setup.
	r.Use(cors.Default())

	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET(pathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, pathSwagger+"/") })
	r.GET(pathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = pathSwagger + "/index.html"
			c.Request.RequestURI = pathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/login", auth.Login)

		apiGroup.GET("/licenses", licenses.List)
		apiGroup.POST("/licenses", licenses.Create)
		apiGroup.PUT("/licenses/:id", licenses.Update)
		apiGroup.PUT("/licenses/:id/reactivate", licenses.Reactivate)

		apiGroup.GET("/tickets", tickets.List)
		apiGroup.POST("/tickets", tickets.Create)
		apiGroup.PUT("/tickets/:id", tickets.Update)

		apiGroup.GET("/lsq_analytics", licenses.LSQAnalytics)
		apiGroup.GET("/dms_analytics", licenses.DMSAnalytics)
		apiGroup.GET("/crm_analytics", licenses.CRMAnalytics)
		apiGroup.GET("/zoho_analytics", licenses.ZohoAnalytics)
	}

	return r
}
