package source_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wcanexus/nexus/internal/adapters/source"
	"github.com/wcanexus/nexus/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newClient(baseURL string, opts ...source.Option) *source.Client {
	base := []source.Option{
		source.WithBaseDelay(time.Millisecond),
		source.WithRateLimit(10000),
	}
	return source.NewClient(baseURL, append(base, opts...)...)
}

func TestFetchPage(t *testing.T) {
	Convey("Given a source serving both page root shapes", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/persons-page-1.json":
				fmt.Fprint(w, `{"items":[{"id":"a"},{"id":"b"}],"total":7,"pagination":{"size":2}}`)
			case "/persons-page-2.json":
				fmt.Fprint(w, `[{"id":"c"}]`)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()
		c := newClient(srv.URL)

		Convey("When fetching an object-rooted page", func() {
			p, err := c.FetchPage(context.Background(), "persons", 1)

			Convey("Then items and pagination metadata are decoded", func() {
				So(err, ShouldBeNil)
				So(p.Items, ShouldHaveLength, 2)
				So(p.Total, ShouldEqual, 7)
				So(p.PageSize, ShouldEqual, 2)
			})
		})

		Convey("When fetching an array-rooted page", func() {
			p, err := c.FetchPage(context.Background(), "persons", 2)

			Convey("Then items decode without metadata", func() {
				So(err, ShouldBeNil)
				So(p.Items, ShouldHaveLength, 1)
				So(p.Total, ShouldEqual, 0)
			})
		})

		Convey("When fetching a page that does not exist", func() {
			_, err := c.FetchPage(context.Background(), "persons", 99)

			Convey("Then the not-found is terminal", func() {
				So(err, ShouldWrap, source.ErrPageNotFound)
			})
		})
	})
}

func TestFetchRetry(t *testing.T) {
	Convey("Given a source that fails twice before succeeding", t, func() {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) <= 2 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `[{"id":"x"}]`)
		}))
		defer srv.Close()
		c := newClient(srv.URL, source.WithMaxAttempts(5))

		Convey("When fetching", func() {
			p, err := c.FetchPage(context.Background(), "persons", 1)

			Convey("Then the page is served after the retries", func() {
				So(err, ShouldBeNil)
				So(p.Items, ShouldHaveLength, 1)
				So(hits.Load(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a source that never recovers", t, func() {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		c := newClient(srv.URL, source.WithMaxAttempts(3))

		Convey("When fetching", func() {
			_, err := c.FetchPage(context.Background(), "persons", 1)

			Convey("Then the attempt bound is honored and the page reported unavailable", func() {
				So(err, ShouldWrap, source.ErrPageUnavailable)
				So(hits.Load(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a source returning 404", t, func() {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.NotFound(w, r)
		}))
		defer srv.Close()
		c := newClient(srv.URL, source.WithMaxAttempts(5))

		Convey("When fetching", func() {
			_, err := c.FetchPage(context.Background(), "persons", 1)

			Convey("Then no retry is attempted", func() {
				So(err, ShouldWrap, source.ErrPageNotFound)
				So(hits.Load(), ShouldEqual, 1)
			})
		})
	})
}

func TestFetchStatic(t *testing.T) {
	Convey("Given a static document endpoint", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/countries.json" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, `{"items":[{"iso2Code":"US","continentId":"XN"}]}`)
		}))
		defer srv.Close()
		c := newClient(srv.URL)

		Convey("When fetching it", func() {
			items, err := c.FetchStatic(context.Background(), "countries")

			Convey("Then the records come back", func() {
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 1)
			})
		})
	})
}

func TestBadShape(t *testing.T) {
	Convey("Given a source returning a scalar root", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `42`)
		}))
		defer srv.Close()
		c := newClient(srv.URL, source.WithMaxAttempts(2))

		Convey("When fetching", func() {
			_, err := c.FetchPage(context.Background(), "persons", 1)

			Convey("Then the fetch fails after retrying", func() {
				So(err, ShouldWrap, source.ErrPageUnavailable)
			})
		})
	})

	Convey("Given URL construction", t, func() {
		c := newClient("https://example.test/api/")

		Convey("Then page URLs follow the collection-page-N pattern", func() {
			So(c.PageURL("competitions", 3), ShouldEqual, "https://example.test/api/competitions-page-3.json")
		})
	})
}
