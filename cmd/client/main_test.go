package main

import (
	"path/filepath"
	"testing"

	"github.com/okian/podium/internal/client"
	"github.com/smartystreets/goconvey/convey"
)

func TestRunArgumentValidation(t *testing.T) {
	convey.Convey("Given the client binary's entry point", t, func() {
		convey.Convey("When called with the wrong number of arguments", func() {
			code := run([]string{"1", "2"})

			convey.Convey("Then it exits non-zero", func() {
				convey.So(code, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When called with a non-numeric country_id", func() {
			code := run([]string{"not-a-number", "1", "roster.txt"})

			convey.Convey("Then it exits non-zero", func() {
				convey.So(code, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When called with a non-numeric delta_x", func() {
			code := run([]string{"1", "not-a-number", "roster.txt"})

			convey.Convey("Then it exits non-zero", func() {
				convey.So(code, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the competitors file does not exist and no server is reachable", func() {
			dir := t.TempDir()
			code := run([]string{"1", "0", filepath.Join(dir, "missing.txt")})

			convey.Convey("Then it exits non-zero without panicking", func() {
				convey.So(code, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestGenerateFileIntegration(t *testing.T) {
	convey.Convey("Given a freshly generated roster", t, func() {
		path := filepath.Join(t.TempDir(), "roster.txt")
		err := client.GenerateFile(path, 5)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the client package can load it back", func() {
			pairs, err := client.LoadCompetitors(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(pairs), convey.ShouldEqual, 5)
		})
	})
}
