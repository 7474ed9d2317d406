// Package junit implements a reporter that accumulates step outcomes and
// renders them as a JUnit XML test suite, for --report-xml-file.
package junit

import (
	"encoding/xml"
	"sync"
	"time"

	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/reporter"
)

var _ reporter.Reporter = (*Reporter)(nil)

// TestCase is one JUnit <testcase> element.
type TestCase struct {
	XMLName   xml.Name `xml:"testcase"`
	ClassName string   `xml:"classname,attr"`
	Name      string   `xml:"name,attr"`
	Failure   *Failure `xml:"failure,omitempty"`
	Skipped   *struct{} `xml:"skipped,omitempty"`
}

// Failure is a JUnit <failure> element.
type Failure struct {
	Message string `xml:"message,attr"`
}

// Suite is the JUnit <testsuite> root element.
type Suite struct {
	XMLName   xml.Name   `xml:"testsuite"`
	Name      string     `xml:"name,attr"`
	Tests     int        `xml:"tests,attr"`
	Failures  int        `xml:"failures,attr"`
	Skipped   int        `xml:"skipped,attr"`
	Time      float64    `xml:"time,attr"`
	TestCases []TestCase `xml:"testcase"`
}

// Reporter accumulates step outcomes and renders a Suite on Report.
type Reporter struct {
	mu    sync.Mutex
	name  string
	start time.Time
	cases []TestCase
}

// New constructs a junit Reporter. name becomes the suite's name
// attribute; the online command passes the tests path.
func New(name string) *Reporter {
	return &Reporter{name: name}
}

func (r *Reporter) Start(models *model.ModelSet, expression string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start = time.Now()
}

func (r *Reporter) End(stats model.Statistics) {}

func (r *Reporter) StepStart(step model.Step) {}

func (r *Reporter) StepEnd(step model.Step, result model.StepOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tc := TestCase{ClassName: step.ModelName, Name: step.Name}
	switch result.Status {
	case model.StepFailed:
		tc.Failure = &Failure{Message: result.Message}
	case model.StepSkipped:
		tc.Skipped = &struct{}{}
	}
	r.cases = append(r.cases, tc)
}

// Report returns the accumulated Suite.
func (r *Reporter) Report() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	suite := Suite{Name: r.name, Tests: len(r.cases), Time: time.Since(r.start).Seconds()}
	for _, tc := range r.cases {
		if tc.Failure != nil {
			suite.Failures++
		}
		if tc.Skipped != nil {
			suite.Skipped++
		}
	}
	suite.TestCases = append(suite.TestCases, r.cases...)
	return suite
}
