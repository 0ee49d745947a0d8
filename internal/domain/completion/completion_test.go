package completion_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wcanexus/nexus/internal/domain/completion"
	"github.com/wcanexus/nexus/internal/domain/events"
	"github.com/wcanexus/nexus/internal/domain/model"
)

func rankEntries(eventIDs []string, worldRank int64) []model.RankEntry {
	out := make([]model.RankEntry, 0, len(eventIDs))
	for _, e := range eventIDs {
		out = append(out, model.RankEntry{
			EventID: e,
			Best:    100,
			Rank:    model.ScopeRanks{World: model.Num(worldRank)},
		})
	}
	return out
}

// finalRounds produces one dated Final per canonical event at the given
// position, one competition per year so the timeline is unambiguous.
func finalRounds(position int64, compPrefix string) []model.FlatRound {
	out := make([]model.FlatRound, 0, len(events.Canonical))
	for i, e := range events.Canonical {
		out = append(out, model.FlatRound{
			CompetitionID: fmt.Sprintf("%s%d", compPrefix, 2000+i),
			EventID:       e,
			Round:         model.FinalRound,
			Position:      model.Num(position),
			Best:          100,
			Average:       110,
			Date:          fmt.Sprintf("%04d-06-15", 2000+i),
		})
	}
	return out
}

func champRound() model.FlatRound {
	return model.FlatRound{
		CompetitionID: "WC2019",
		EventID:       "333",
		Round:         model.FinalRound,
		Position:      2,
		Best:          500,
		Date:          "2019-07-14",
	}
}

func TestTierLadder(t *testing.T) {
	Convey("Given competitors with progressively richer histories", t, func() {
		base := model.Competitor{ID: "2008TIER01", Name: "Tier Tester", Country: "NL"}

		Convey("A competitor missing a canonical single is not a completionist", func() {
			c := base
			c.Rank.Singles = rankEntries(events.Canonical[:len(events.Canonical)-1], 50)
			_, ok := completion.Classify(c, nil)
			So(ok, ShouldBeFalse)
		})

		Convey("Singles in every canonical event earn Bronze", func() {
			c := base
			c.Rank.Singles = rankEntries(events.Canonical, 50)
			rec, ok := completion.Classify(c, nil)
			So(ok, ShouldBeTrue)
			So(rec.Category, ShouldEqual, "Bronze")
			So(rec.CompetitorID, ShouldEqual, "2008TIER01")
		})

		Convey("Adding the silver average set earns Silver", func() {
			c := base
			c.Rank.Singles = rankEntries(events.Canonical, 50)
			c.Rank.Averages = rankEntries(events.SilverAverages, 50)
			rec, ok := completion.Classify(c, nil)
			So(ok, ShouldBeTrue)
			So(rec.Category, ShouldEqual, "Silver")
		})

		Convey("Adding the blind and fewest-moves averages earns Gold", func() {
			c := base
			c.Rank.Singles = rankEntries(events.Canonical, 50)
			c.Rank.Averages = rankEntries(events.GoldAverages, 50)
			rec, ok := completion.Classify(c, nil)
			So(ok, ShouldBeTrue)
			So(rec.Category, ShouldEqual, "Gold")
		})

		Convey("Gold plus a world championship podium earns Platinum", func() {
			c := base
			c.Rank.Singles = rankEntries(events.Canonical, 50)
			c.Rank.Averages = rankEntries(events.GoldAverages, 50)
			c.FlatResults = []model.FlatRound{champRound()}
			rec, ok := completion.Classify(c, nil)
			So(ok, ShouldBeTrue)
			So(rec.Category, ShouldEqual, "Platinum")
		})

		Convey("Gold plus a current world #1 also earns Platinum", func() {
			c := base
			c.Rank.Singles = rankEntries(events.Canonical, 1)
			c.Rank.Averages = rankEntries(events.GoldAverages, 50)
			rec, ok := completion.Classify(c, nil)
			So(ok, ShouldBeTrue)
			So(rec.Category, ShouldEqual, "Platinum")
		})

		Convey("Platinum plus a Final win in every canonical event earns Palladium", func() {
			c := base
			c.Rank.Singles = rankEntries(events.Canonical, 50)
			c.Rank.Averages = rankEntries(events.GoldAverages, 50)
			c.FlatResults = append(finalRounds(1, "WinOpen"), champRound())
			rec, ok := completion.Classify(c, nil)
			So(ok, ShouldBeTrue)
			So(rec.Category, ShouldEqual, "Palladium")
		})

		Convey("Full podium coverage with a world record and championship podium earns Iridium", func() {
			c := base
			c.Rank.Singles = rankEntries(events.Canonical, 1)
			c.Rank.Averages = rankEntries(events.GoldAverages, 50)
			rounds := finalRounds(1, "GoldOpen")
			rounds = append(rounds, finalRounds(2, "SilverOpen")...)
			rounds = append(rounds, finalRounds(3, "BronzeOpen")...)
			rounds = append(rounds, champRound())
			c.FlatResults = rounds
			rec, ok := completion.Classify(c, nil)
			So(ok, ShouldBeTrue)
			So(rec.Category, ShouldEqual, "Iridium")
		})
	})
}

func TestAchievementPoint(t *testing.T) {
	Convey("Given a Bronze competitor with rounds spread over the years", t, func() {
		c := model.Competitor{ID: "2010DATE01", Name: "Dated"}
		c.Rank.Singles = rankEntries(events.Canonical, 50)
		c.FlatResults = finalRounds(4, "YearOpen")

		Convey("When classified", func() {
			rec, ok := completion.Classify(c, nil)

			Convey("Then the achievement date is the round completing the set", func() {
				So(ok, ShouldBeTrue)
				last := c.FlatResults[len(c.FlatResults)-1]
				So(rec.AchievedOn, ShouldEqual, last.Date)
				So(rec.EventID, ShouldEqual, last.EventID)
			})
		})
	})

	Convey("Given rounds dated only through their competition", t, func() {
		c := model.Competitor{ID: "2010DATE02", Name: "Comp Dated"}
		c.Rank.Singles = rankEntries(events.Canonical, 50)
		c.FlatResults = []model.FlatRound{
			{CompetitionID: "UndatedOpen2012", EventID: "333", Round: model.FinalRound, Position: 5, Best: 900},
		}
		competitions := map[string]model.Competition{
			"UndatedOpen2012": {ID: "UndatedOpen2012", Date: model.DateRange{From: "2012-03-10", Till: "2012-03-11"}},
		}

		Convey("When classified", func() {
			rec, ok := completion.Classify(c, competitions)

			Convey("Then the competition end date fills in", func() {
				So(ok, ShouldBeTrue)
				So(rec.AchievedOn, ShouldEqual, "2012-03-11")
			})
		})
	})
}

func TestBuildAllOrdering(t *testing.T) {
	Convey("Given a snapshot with mixed tiers", t, func() {
		bronze := model.Competitor{ID: "2009AAAA01", Name: "A"}
		bronze.Rank.Singles = rankEntries(events.Canonical, 50)

		silver := model.Competitor{ID: "2009ZZZZ01", Name: "Z"}
		silver.Rank.Singles = rankEntries(events.Canonical, 50)
		silver.Rank.Averages = rankEntries(events.SilverAverages, 50)

		none := model.Competitor{ID: "2009NONE01", Name: "N"}

		competitors := map[string]model.Competitor{
			bronze.ID: bronze,
			silver.ID: silver,
			none.ID:   none,
		}

		Convey("When all competitors are classified", func() {
			records := completion.BuildAll(competitors, nil)

			Convey("Then records sort by tier descending then id", func() {
				So(records, ShouldHaveLength, 2)
				So(records[0].CompetitorID, ShouldEqual, "2009ZZZZ01")
				So(records[0].Category, ShouldEqual, "Silver")
				So(records[1].CompetitorID, ShouldEqual, "2009AAAA01")
			})
		})
	})
}

func TestCategoryParsing(t *testing.T) {
	Convey("Given the tier names", t, func() {
		Convey("Then parsing is case-insensitive and round-trips", func() {
			for _, name := range []string{"Bronze", "Silver", "Gold", "Platinum", "Palladium", "Iridium"} {
				cat, ok := completion.ParseCategory(name)
				So(ok, ShouldBeTrue)
				So(cat.String(), ShouldEqual, name)

				lower, ok := completion.ParseCategory("iridium")
				So(ok, ShouldBeTrue)
				So(lower, ShouldEqual, completion.Iridium)
			}
		})

		Convey("Then unknown names are rejected", func() {
			_, ok := completion.ParseCategory("unobtainium")
			So(ok, ShouldBeFalse)
		})

		Convey("Then the tiers are strictly ordered", func() {
			So(completion.None, ShouldBeLessThan, completion.Bronze)
			So(completion.Bronze, ShouldBeLessThan, completion.Silver)
			So(completion.Silver, ShouldBeLessThan, completion.Gold)
			So(completion.Gold, ShouldBeLessThan, completion.Platinum)
			So(completion.Platinum, ShouldBeLessThan, completion.Palladium)
			So(completion.Palladium, ShouldBeLessThan, completion.Iridium)
		})
	})
}
