// Package metrics holds the process-wide counters exported at /metrics.
package metrics

import (
	"fmt"
	"io"

	vm "github.com/VictoriaMetrics/metrics"
)

var (
	SerialAllocations      = vm.NewCounter("serial_allocations_total")
	SerialAllocationErrors = vm.NewCounter("serial_allocation_errors_total")
	NumbersCreated         = vm.NewCounter("numbers_created_total")
	NumberSerialConflicts  = vm.NewCounter("number_serial_conflicts_total")

	CodesIssued      = vm.NewCounter("verification_codes_issued_total")
	DeliveryFailures = vm.NewCounter("verification_delivery_failures_total")
	CodesReaped      = vm.NewCounter("verification_codes_reaped_total")
)

// Validation counts a validate outcome; result is "ok" or a failure reason.
func Validation(result string) {
	vm.GetOrCreateCounter(fmt.Sprintf(`verification_validations_total{result=%q}`, result)).Inc()
}

func WritePrometheus(w io.Writer) {
	vm.WritePrometheus(w, true)
}
