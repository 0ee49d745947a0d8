package rank_test

import (
	"fmt"
	"reflect"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wcanexus/nexus/internal/domain/model"
	"github.com/wcanexus/nexus/internal/index/rank"
)

func singleEntry(event string, best, world, continent, country int) model.RankEntry {
	return model.RankEntry{
		EventID: event,
		Best:    model.Num(best),
		Rank: model.ScopeRanks{
			World:     model.Num(world),
			Continent: model.Num(continent),
			Country:   model.Num(country),
		},
	}
}

func fixtureCompetitors() map[string]model.Competitor {
	out := map[string]model.Competitor{}
	for _, n := range []int{1, 3, 5, 9} {
		id := fmt.Sprintf("2010RANK%02d", n)
		out[id] = model.Competitor{
			ID:      id,
			Name:    fmt.Sprintf("Rank %d", n),
			Country: "US",
			Rank: model.Ranks{
				Singles: []model.RankEntry{singleEntry("333", 400+n, n, n, n)},
			},
		}
	}
	return out
}

var usContinents = map[string]string{"us": "north_america"}

func TestBuildDeterminism(t *testing.T) {
	Convey("Given one harvested snapshot", t, func() {
		competitors := fixtureCompetitors()

		Convey("When the index is built twice", func() {
			a := rank.Build(competitors, usContinents)
			b := rank.Build(competitors, usContinents)

			Convey("Then the content is identical", func() {
				So(reflect.DeepEqual(a, b), ShouldBeTrue)
				So(a.Size(), ShouldEqual, b.Size())
			})
		})
	})
}

func TestLookupFallback(t *testing.T) {
	Convey("Given an index with world ranks {1,3,5,9} for 333 singles", t, func() {
		idx := rank.Build(fixtureCompetitors(), usContinents)

		Convey("When requesting rank 5", func() {
			res, err := idx.Lookup([]string{"world"}, "333", rank.TypeSingles, 5)

			Convey("Then the match is exact with no note", func() {
				So(err, ShouldBeNil)
				So(res.Actual, ShouldEqual, 5)
				So(res.CompetitorID, ShouldEqual, "2010RANK05")
				So(res.Note, ShouldBeEmpty)
			})
		})

		Convey("When requesting rank 4", func() {
			res, err := idx.Lookup([]string{"world"}, "333", rank.TypeSingles, 4)

			Convey("Then the nearest rank at or below is returned with a note", func() {
				So(err, ShouldBeNil)
				So(res.Actual, ShouldEqual, 3)
				So(res.Note, ShouldEqual, "Requested rank #4 not available. Returning closest available rank #3.")
			})
		})

		Convey("When requesting rank 0", func() {
			res, err := idx.Lookup([]string{"world"}, "333", rank.TypeSingles, 0)

			Convey("Then the smallest available rank is returned with a note", func() {
				So(err, ShouldBeNil)
				So(res.Actual, ShouldEqual, 1)
				So(res.Note, ShouldNotBeEmpty)
			})
		})

		Convey("When requesting a rank above the maximum", func() {
			res, err := idx.Lookup([]string{"world"}, "333", rank.TypeSingles, 100)

			Convey("Then the greatest available rank is returned with a note", func() {
				So(err, ShouldBeNil)
				So(res.Actual, ShouldEqual, 9)
				So(res.Note, ShouldNotBeEmpty)
			})
		})

		Convey("When the event has no entries at all", func() {
			_, err := idx.Lookup([]string{"world"}, "minx", rank.TypeSingles, 1)

			Convey("Then the lookup reports not found", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestScopes(t *testing.T) {
	Convey("Given a competitor with a continent mapping and one without", t, func() {
		competitors := map[string]model.Competitor{
			"2013MAPP01": {
				ID: "2013MAPP01", Country: "US",
				Rank: model.Ranks{Singles: []model.RankEntry{singleEntry("333", 500, 1, 1, 1)}},
			},
			"2013NOMA01": {
				ID: "2013NOMA01", Country: "ZZ",
				Rank: model.Ranks{Singles: []model.RankEntry{singleEntry("333", 600, 2, 1, 1)}},
			},
		}
		idx := rank.Build(competitors, usContinents)

		Convey("Then the mapped competitor appears in the continent scope", func() {
			res, err := idx.Lookup([]string{"north_america"}, "333", rank.TypeSingles, 1)
			So(err, ShouldBeNil)
			So(res.CompetitorID, ShouldEqual, "2013MAPP01")
		})

		Convey("Then the unmapped competitor is skipped for continent scope only", func() {
			_, err := idx.Lookup([]string{"zz_continent"}, "333", rank.TypeSingles, 1)
			So(err, ShouldNotBeNil)

			res, err := idx.Lookup([]string{"world"}, "333", rank.TypeSingles, 2)
			So(err, ShouldBeNil)
			So(res.CompetitorID, ShouldEqual, "2013NOMA01")

			res, err = idx.Lookup([]string{"zz"}, "333", rank.TypeSingles, 1)
			So(err, ShouldBeNil)
			So(res.CompetitorID, ShouldEqual, "2013NOMA01")
		})

		Convey("Then multiple scopes are unioned", func() {
			res, err := idx.Lookup([]string{"north_america", "zz"}, "333", rank.TypeSingles, 1)
			So(err, ShouldBeNil)
			// Later scopes overwrite equal rank numbers.
			So(res.CompetitorID, ShouldEqual, "2013NOMA01")
		})
	})
}

func TestBuildSkipsInvalidRanks(t *testing.T) {
	Convey("Given entries with missing or non-positive rank numbers", t, func() {
		competitors := map[string]model.Competitor{
			"2014SKIP01": {
				ID: "2014SKIP01", Country: "US",
				Rank: model.Ranks{
					Singles:  []model.RankEntry{singleEntry("222", 300, 0, 0, -2)},
					Averages: []model.RankEntry{singleEntry("222", 350, 7, 0, 0)},
				},
			},
		}
		idx := rank.Build(competitors, usContinents)

		Convey("Then only the valid average entry is indexed", func() {
			_, err := idx.Lookup([]string{"world"}, "222", rank.TypeSingles, 1)
			So(err, ShouldNotBeNil)

			res, err := idx.Lookup([]string{"world"}, "222", rank.TypeAverages, 7)
			So(err, ShouldBeNil)
			So(res.CompetitorID, ShouldEqual, "2014SKIP01")
		})
	})
}
