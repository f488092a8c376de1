package metrics

import (
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
	"github.com/stretchr/testify/mock"
)

// MockRecorder is a mock implementation of MetricsRecorder for testing.
type MockRecorder struct {
	mock.Mock
}

var _ contract.MetricsRecorder = &MockRecorder{} // Compile-time check

// ObserveFetch implements the MetricsRecorder interface.
func (m *MockRecorder) ObserveFetch(source string, runs int) {
	m.Called(source, runs)
}

// ObserveReport implements the MetricsRecorder interface.
func (m *MockRecorder) ObserveReport(report *schema.MatrixReport, elapsed time.Duration) {
	m.Called(report, elapsed)
}
