package poller

import "github.com/prometheus/client_golang/prometheus"

var (
	pollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studyboard_chat_polls_total",
			Help: "Total number of live chat polls",
		},
	)
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyboard_chat_messages_total",
			Help: "Chat messages handled, by outcome",
		},
		[]string{"outcome"},
	)
	pollErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyboard_chat_poll_errors_total",
			Help: "Failed polls and message handling, by reason",
		},
		[]string{"reason"},
	)
)

// RegisterMetrics registers the poller metrics with reg. Call it once from main.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(pollsTotal, messagesTotal, pollErrors)
}
