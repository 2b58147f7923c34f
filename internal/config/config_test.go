package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Given the default constants", t, func() {
		c := Default()

		Convey("The well-known game constants are set", func() {
			So(c.MaxNumLaps, ShouldEqual, 10)
			So(c.TimeoutSec, ShouldEqual, 90)
			So(c.FixedDepth.MaxDepth, ShouldEqual, 2)
			So(c.MonteCarlo.NumThreads, ShouldEqual, 8)
			So(c.Scoring.CrashScore, ShouldEqual, 1e6)
			So(c.Scoring.MinimumScore, ShouldEqual, -1e6)
		})

		Convey("YawBinRadians converts degrees to radians", func() {
			So(c.YawBinRadians(), ShouldAlmostEqual, c.AStar.YawBinDeg*3.14159265/180, 1e-6)
		})
	})
}

func TestFromYAML(t *testing.T) {
	Convey("Given a YAML file overriding a handful of constants", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "constants.yaml")
		contents := `
kind: Constants
def:
  maxNumLaps: 5
  timeoutSec: 30
  monteCarlo:
    numThreads: 4
`
		So(os.WriteFile(path, []byte(contents), 0o644), ShouldBeNil)

		Convey("FromYAML overlays the file onto the defaults", func() {
			c, err := FromYAML(path)
			So(err, ShouldBeNil)
			So(c.MaxNumLaps, ShouldEqual, 5)
			So(c.TimeoutSec, ShouldEqual, 30)
			So(c.MonteCarlo.NumThreads, ShouldEqual, 4)

			Convey("Fields absent from the file keep their defaults", func() {
				So(c.MonteCarlo.MaxDepth, ShouldEqual, 6)
				So(c.AStar.Factor, ShouldEqual, 1.5)
			})
		})
	})

	Convey("Given a nonexistent path", t, func() {
		Convey("FromYAML returns an error", func() {
			_, err := FromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
