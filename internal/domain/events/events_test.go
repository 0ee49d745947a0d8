package events_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wcanexus/nexus/internal/domain/events"
)

func TestEventSets(t *testing.T) {
	Convey("Given the canonical sets", t, func() {
		Convey("Then the canonical single set has 17 events", func() {
			So(events.Canonical, ShouldHaveLength, 17)
		})

		Convey("Then gold averages extend silver averages", func() {
			So(len(events.GoldAverages), ShouldEqual, len(events.SilverAverages)+4)
			for _, e := range events.SilverAverages {
				So(events.GoldAverages, ShouldContain, e)
			}
			So(events.GoldAverages, ShouldContain, "333bf")
			So(events.GoldAverages, ShouldContain, "555bf")
		})
	})
}

func TestStripLegacy(t *testing.T) {
	Convey("Given a mixed event list", t, func() {
		got := events.StripLegacy([]string{"333", "magic", "", "sq1", "333ft"})

		Convey("Then legacy and empty ids are removed", func() {
			So(got, ShouldHaveLength, 2)
			So(got, ShouldContainKey, "333")
			So(got, ShouldContainKey, "sq1")
		})
	})
}

func TestName(t *testing.T) {
	Convey("Given known and unknown event ids", t, func() {
		So(events.Name("333"), ShouldEqual, "3x3 Cube")
		So(events.Name("999"), ShouldEqual, "999")
	})
}
