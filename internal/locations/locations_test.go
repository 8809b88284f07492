package locations

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCountriesSorted(t *testing.T) {
	countries, err := Default().Countries()
	if err != nil {
		t.Fatalf("Countries: %v", err)
	}
	if len(countries) == 0 {
		t.Fatal("expected embedded country data")
	}
	for i := 1; i < len(countries); i++ {
		if countries[i-1] > countries[i] {
			t.Fatalf("countries not sorted: %q before %q", countries[i-1], countries[i])
		}
	}
}

func TestCitiesForKnownCountry(t *testing.T) {
	cities, err := Default().CitiesFor("Singapore")
	if err != nil {
		t.Fatalf("CitiesFor: %v", err)
	}
	if len(cities) != 1 || cities[0] != "Singapore" {
		t.Fatalf("cities = %v", cities)
	}
}

func TestCitiesForUnknownCountry(t *testing.T) {
	cities, err := Default().CitiesFor("Atlantis")
	if err != nil {
		t.Fatalf("CitiesFor: %v", err)
	}
	if len(cities) != 0 {
		t.Fatalf("unknown country should yield empty list, got %v", cities)
	}
}

func TestCitiesForAllUnionsWithoutDuplicates(t *testing.T) {
	cities, err := Default().CitiesFor("ALL")
	if err != nil {
		t.Fatalf("CitiesFor: %v", err)
	}
	seen := make(map[string]int)
	for _, city := range cities {
		seen[city]++
	}
	for city, n := range seen {
		if n > 1 {
			t.Fatalf("city %q appears %d times in union", city, n)
		}
	}
	countries, _ := Default().Countries()
	total := 0
	for _, country := range countries {
		cs, _ := Default().CitiesFor(country)
		total += len(cs)
	}
	if len(cities) > total {
		t.Fatalf("union larger than sum of parts: %d > %d", len(cities), total)
	}
}

func TestCitiesEndpointRequiresCountry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(Default()).RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/cities", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
