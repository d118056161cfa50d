package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type WindowTestSuite struct {
	suite.Suite
}

func TestWindowSuite(t *testing.T) {
	suite.Run(t, new(WindowTestSuite))
}

func (suite *WindowTestSuite) TestCalculateRejectsNonPositiveWindow() {
	target := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	_, _, err := Calculate(target, 0, 0)
	suite.Error(err)

	_, _, err = Calculate(target, 0, -1)
	suite.Error(err)
}

// A one-hour offset and one-hour window land on the prior hour.
func (suite *WindowTestSuite) TestCalculateS5LeakFreeWindow() {
	target := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	start, end, err := Calculate(target, 3600, 3600)
	suite.NoError(err)
	suite.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), end)
	suite.Equal(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), start)
}

func (suite *WindowTestSuite) TestCalculateNegativeOffsetShiftsForward() {
	target := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	start, end, err := Calculate(target, -60, 120)
	suite.NoError(err)
	suite.Equal(time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC), end)
	suite.Equal(time.Date(2024, 1, 1, 9, 59, 0, 0, time.UTC), start)
}

// Later targets always yield later windows.
func (suite *WindowTestSuite) TestCalculateMonotonicity() {
	t1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	start1, end1, err := Calculate(t1, 60, 3600)
	suite.NoError(err)
	start2, end2, err := Calculate(t2, 60, 3600)
	suite.NoError(err)

	suite.True(end1.Before(end2))
	suite.True(start1.Before(start2))
}

// A positive offset keeps the window strictly before the target.
func (suite *WindowTestSuite) TestCalculateLeakFree() {
	target := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	_, end, err := Calculate(target, 60, 3600)
	suite.NoError(err)
	suite.True(end.Before(target))
}

func (suite *WindowTestSuite) TestContainsInclusiveBounds() {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	suite.True(Contains(start, start, end))
	suite.True(Contains(end, start, end))
	suite.False(Contains(start.Add(-time.Second), start, end))
	suite.False(Contains(end.Add(time.Second), start, end))
}
