package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moffa90/go-gt511/protocol"
	"github.com/moffa90/go-gt511/scanner"
)

// Namespace prefixes every scanner metric.
const Namespace = "fps"

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler exposing reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ScannerMetrics implements scanner.Metrics with Prometheus collectors.
type ScannerMetrics struct {
	CommandsTotal    *prometheus.CounterVec // labels: command
	ResponsesTotal   *prometheus.CounterVec // labels: command, result=ack|nack
	DiagnosticsTotal *prometheus.CounterVec // labels: kind
	BytesTotal       *prometheus.CounterVec // labels: direction=rx|tx
	OverflowsTotal   prometheus.Counter
	BaudRateGauge    prometheus.Gauge
}

var _ scanner.Metrics = (*ScannerMetrics)(nil)

// NewScannerMetrics registers and returns the scanner metrics.
func NewScannerMetrics(reg prometheus.Registerer) *ScannerMetrics {
	m := &ScannerMetrics{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Command frames written to the scanner.",
		}, []string{"command"}),
		ResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "responses_total",
			Help:      "Response frames read from the scanner.",
		}, []string{"command", "result"}),
		DiagnosticsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "diagnostics_total",
			Help:      "Non-fatal protocol irregularities by kind.",
		}, []string{"kind"}),
		BytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bulk_bytes_total",
			Help:      "Payload bytes moved by bulk transfers.",
		}, []string{"direction"}),
		OverflowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "receive_overflows_total",
			Help:      "Bulk receives aborted by a host buffer overflow.",
		}),
		BaudRateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "baud_rate",
			Help:      "Current link speed in baud.",
		}),
	}
	reg.MustRegister(m.CommandsTotal, m.ResponsesTotal, m.DiagnosticsTotal, m.BytesTotal, m.OverflowsTotal, m.BaudRateGauge)
	return m
}

func (m *ScannerMetrics) CommandSent(op protocol.Opcode) {
	m.CommandsTotal.WithLabelValues(op.String()).Inc()
}

func (m *ScannerMetrics) ResponseReceived(op protocol.Opcode, ack bool) {
	result := "nack"
	if ack {
		result = "ack"
	}
	m.ResponsesTotal.WithLabelValues(op.String(), result).Inc()
}

func (m *ScannerMetrics) Diagnostic(kind string) {
	m.DiagnosticsTotal.WithLabelValues(kind).Inc()
}

func (m *ScannerMetrics) BytesTransferred(direction string, n int) {
	m.BytesTotal.WithLabelValues(direction).Add(float64(n))
}

func (m *ScannerMetrics) Overflow() {
	m.OverflowsTotal.Inc()
}

func (m *ScannerMetrics) BaudRate(rate int) {
	m.BaudRateGauge.Set(float64(rate))
}
