package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smsagent_messages_total",
			Help: "Inbound message lifecycle counter by action and outcome",
		},
		// rejected_sender|parse_failed|validation_failed|lookup_failed|submitted|provider_failed|unknown_action
		[]string{"action", "outcome"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		MessagesTotal,
	)
}
