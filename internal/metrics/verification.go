package metrics

import "github.com/prometheus/client_golang/prometheus"

// VerificationTotal counts e-mail verification attempts.
var VerificationTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_total",
		Help:      "E-mail verification operations",
	},
	[]string{"action", "result"}, // action: "send" / "verify"
)

var verificationMetricsRegistered bool

// RegisterVerificationMetrics registers verification metrics. Must be called once from main.
func RegisterVerificationMetrics() {
	if verificationMetricsRegistered {
		return
	}
	prometheus.MustRegister(VerificationTotal)
	verificationMetricsRegistered = true
}
