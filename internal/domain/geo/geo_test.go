package geo_test

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wcanexus/nexus/internal/domain/geo"
)

func TestContinentName(t *testing.T) {
	Convey("Given continent ids of both conventions", t, func() {
		So(geo.ContinentName("XN"), ShouldEqual, "north_america")
		So(geo.ContinentName("xe"), ShouldEqual, "europe")
		So(geo.ContinentName("EU"), ShouldEqual, "europe")
		So(geo.ContinentName("OC"), ShouldEqual, "oceania")

		Convey("Then unknown ids pass through lowercased", func() {
			So(geo.ContinentName("ZZ"), ShouldEqual, "zz")
		})
	})
}

func TestBuildCountryContinents(t *testing.T) {
	Convey("Given raw countries.json records", t, func() {
		records := []json.RawMessage{
			json.RawMessage(`{"iso2Code": "US", "continentId": "XN"}`),
			json.RawMessage(`{"iso2Code": "DE", "continentId": "EU"}`),
			json.RawMessage(`{"iso2Code": "", "continentId": "XA"}`),
			json.RawMessage(`{"iso2Code": "XX"}`),
			json.RawMessage(`not json`),
		}

		Convey("When the mapping is built", func() {
			m := geo.BuildCountryContinents(records)

			Convey("Then valid records map lowercased and the rest are skipped", func() {
				So(m, ShouldHaveLength, 2)
				So(m["us"], ShouldEqual, "north_america")
				So(m["de"], ShouldEqual, "europe")
			})
		})
	})
}
