package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storypixie_admin_logins_total",
		Help: "Total admin login attempts by result",
	}, []string{"result"})

	TwoFactorVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storypixie_admin_two_factor_verifications_total",
		Help: "Total two-factor code verifications by result",
	}, []string{"result"})

	ModerationDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storypixie_admin_moderation_decisions_total",
		Help: "Total story moderation decisions by outcome",
	}, []string{"decision"})

	StoriesExported = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storypixie_admin_stories_exported_total",
		Help: "Total stories exported to object storage",
	})
)

func init() {
	prometheus.MustRegister(LoginsTotal, TwoFactorVerifications, ModerationDecisions, StoriesExported)
}
