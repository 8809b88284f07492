package locations

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nextstep-backend/internal/shared/server/respond"
)

// Handler serves country and city lookups.
type Handler struct {
	Catalog *Catalog
}

// NewHandler constructs a Handler.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{Catalog: catalog}
}

// RegisterRoutes attaches location routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/locations/countries", h.countries)
	rg.GET("/locations/cities", h.cities)
}

func (h *Handler) countries(c *gin.Context) {
	countries, err := h.Catalog.Countries()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load countries", nil)
		return
	}
	respond.JSON(c, http.StatusOK, countries)
}

func (h *Handler) cities(c *gin.Context) {
	country := strings.TrimSpace(c.Query("country"))
	if country == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "country is required", nil)
		return
	}

	cities, err := h.Catalog.CitiesFor(country)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load cities", nil)
		return
	}
	respond.JSON(c, http.StatusOK, cities)
}
