package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestGenerateFile(t *testing.T) {
	convey.Convey("Given a target path and a competitor count", t, func() {
		path := filepath.Join(t.TempDir(), "roster.txt")

		convey.Convey("When generating the fixture", func() {
			err := GenerateFile(path, 50)

			convey.Convey("Then it writes a parseable roster of the requested size", func() {
				convey.So(err, convey.ShouldBeNil)
				pairs, err := LoadCompetitors(path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(pairs), convey.ShouldEqual, 50)
				for _, p := range pairs {
					convey.So(p.Score, convey.ShouldBeGreaterThanOrEqualTo, 1)
					convey.So(p.Score, convey.ShouldBeLessThanOrEqualTo, 100)
				}
			})
		})
	})

	convey.Convey("Given a non-positive competitor count", t, func() {
		path := filepath.Join(t.TempDir(), "roster.txt")

		convey.Convey("When generating the fixture", func() {
			err := GenerateFile(path, 0)

			convey.Convey("Then it reports an error and writes nothing", func() {
				convey.So(err, convey.ShouldNotBeNil)
				_, statErr := os.Stat(path)
				convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
			})
		})
	})
}
