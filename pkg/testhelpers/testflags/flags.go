package testflags

import (
	"flag"
	"testing"
)

// Test enablement flags.
// Unit and integration tests run by default; the slow end-to-end proving
// scenarios require -slow.
var integrationTest = flag.Bool("integration", true, "Run the integration go tests")
var unitTest = flag.Bool("unit", true, "Run the unit go tests")
var slowTest = flag.Bool("slow", false, "Run the slow go tests")

// UnitTest will run the test its called from iff the `-unit` or `-short` flag
// is passed when calling `go test`. Otherwise the test will be skipped. UnitTest
// will run the test its called from in parallel.
func UnitTest(t *testing.T) {
	if !*unitTest && !testing.Short() {
		t.SkipNow()
	}
	t.Parallel()
}

// IntegrationTest will run the test its called from iff the `-integration` flag
// is passed when calling `go test`. Otherwise the test will be skipped.
// IntegrationTest will run the test its called from in parallel.
func IntegrationTest(t *testing.T) {
	if !*integrationTest || testing.Short() {
		t.SkipNow()
	}
	t.Parallel()
}

// SlowTest runs the test its called from only when `-slow` is passed.
func SlowTest(t *testing.T) {
	if !*slowTest {
		t.SkipNow()
	}
	t.Parallel()
}

// BadUnitTestWithSideEffects will run the test its called from iff the
// `-unit` or `-short` flag is passed when calling `go test`. Tests using it
// run serially because they touch process-wide state such as registered
// metric views.
func BadUnitTestWithSideEffects(t *testing.T) {
	if !*unitTest && !testing.Short() {
		t.SkipNow()
	}
}
