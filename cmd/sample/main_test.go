package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	convey.Convey("Given the sample subjects", t, func() {
		var out bytes.Buffer

		convey.Convey("When running with the default sex policy", func() {
			err := run(&out, false, false)

			convey.Convey("Then both estimates are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldEqual,
					"Biological Age Acceleration = 1.53 years\nPhenoAge = 8.47 years\n")
			})
		})

		convey.Convey("When running with the sex term", func() {
			err := run(&out, true, false)

			convey.Convey("Then the BAA line reflects it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldStartWith, "Biological Age Acceleration = 1.93 years\n")
			})
		})

		convey.Convey("When asking for an explanation", func() {
			err := run(&out, false, true)

			convey.Convey("Then a contribution row is printed per applied feature", func() {
				convey.So(err, convey.ShouldBeNil)
				text := out.String()
				convey.So(text, convey.ShouldContainSubstring, "BAA contributions")
				convey.So(strings.ToUpper(text), convey.ShouldContainSubstring, "DEVIATION")
				convey.So(text, convey.ShouldContainSubstring, "cystatin_c")
				convey.So(text, convey.ShouldNotContainSubstring, "sexM")
				convey.So(text, convey.ShouldEndWith, "PhenoAge = 8.47 years\n")
			})
		})
	})
}
