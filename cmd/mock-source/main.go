// Command mock-source serves a small deterministic paginated dataset in
// the upstream source's wire format, for local development and demos.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"github.com/wcanexus/nexus/internal/domain/events"
	"github.com/wcanexus/nexus/pkg/logger"
)

const (
	personsPerPage = 50
	personPages    = 4
	compsPerPage   = 25
	compPages      = 2
)

var pagePath = regexp.MustCompile(`^/(persons|competitions)-page-(\d+)\.json$`)

func main() {
	addr := flag.String("addr", ":9190", "listen address")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get().Named("mock-source")
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/countries.json", serveCountries)
	mux.HandleFunc("/", servePage)

	log.Info(ctx, "serving mock dataset",
		logger.String("addr", *addr),
		logger.Int("person_pages", personPages),
		logger.Int("competition_pages", compPages),
	)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Error(ctx, "server failed", logger.Error(err))
	}
}

func servePage(w http.ResponseWriter, r *http.Request) {
	m := pagePath.FindStringSubmatch(r.URL.Path)
	if m == nil {
		http.NotFound(w, r)
		return
	}
	page, _ := strconv.Atoi(m[2])
	switch m[1] {
	case "persons":
		if page < 1 || page > personPages {
			http.NotFound(w, r)
			return
		}
		writePage(w, personItems(page), personsPerPage*personPages, personsPerPage)
	case "competitions":
		if page < 1 || page > compPages {
			http.NotFound(w, r)
			return
		}
		writePage(w, competitionItems(page), compsPerPage*compPages, compsPerPage)
	}
}

func writePage(w http.ResponseWriter, items []any, total, size int) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"items": items,
		"total": total,
		"pagination": map[string]int{
			"size": size,
		},
	})
}

// personItems generates one page of synthetic competitors. Ids encode
// page and index so every page is reproducible.
func personItems(page int) []any {
	countries := []string{"US", "DE", "JP", "BR", "AU"}
	eventIDs := events.Canonical
	items := make([]any, 0, personsPerPage)
	for i := 0; i < personsPerPage; i++ {
		n := (page-1)*personsPerPage + i
		id := fmt.Sprintf("2015MOCK%02d", n)
		event := eventIDs[n%len(eventIDs)]
		items = append(items, map[string]any{
			"id":                   id,
			"name":                 fmt.Sprintf("Mock Person %d", n),
			"country":              countries[n%len(countries)],
			"numberOfCompetitions": 1 + n%20,
			"rank": map[string]any{
				"singles": []any{map[string]any{
					"eventId": event,
					"best":    500 + 10*n,
					"rank":    map[string]int{"world": n + 1, "continent": n/2 + 1, "country": n/5 + 1},
				}},
				"averages": []any{},
			},
			"results": map[string]any{
				fmt.Sprintf("MockOpen%d", n%compsPerPage): map[string]any{
					event: []any{map[string]any{
						"round":    "Final",
						"position": n%5 + 1,
						"best":     500 + 10*n,
						"average":  0,
					}},
				},
			},
		})
	}
	return items
}

func competitionItems(page int) []any {
	items := make([]any, 0, compsPerPage)
	for i := 0; i < compsPerPage; i++ {
		n := (page-1)*compsPerPage + i
		year := 2010 + n%15
		items = append(items, map[string]any{
			"id":      fmt.Sprintf("MockOpen%d", n),
			"country": "US",
			"date": map[string]string{
				"from": fmt.Sprintf("%d-06-01", year),
				"till": fmt.Sprintf("%d-06-02", year),
			},
			"events": []string{"333", "222", "444"},
		})
	}
	return items
}

func serveCountries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode([]any{
		map[string]string{"iso2Code": "US", "continentId": "XN"},
		map[string]string{"iso2Code": "DE", "continentId": "XE"},
		map[string]string{"iso2Code": "JP", "continentId": "XA"},
		map[string]string{"iso2Code": "BR", "continentId": "XS"},
		map[string]string{"iso2Code": "AU", "continentId": "XO"},
	})
}
