package services

import "github.com/prometheus/client_golang/prometheus"

var (
	articlesSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_submitted_total",
			Help: "Total number of submitted articles, labelled by duplicate flag.",
		},
		[]string{"repeat"},
	)
	articleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_transitions_total",
			Help: "Total number of review status transitions by action.",
		},
		[]string{"action"},
	)
	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notification mails by result.",
		},
		[]string{"result"},
	)
	backgroundTaskFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_task_failures_total",
			Help: "Total number of failed fire-and-forget tasks by task name.",
		},
		[]string{"task"},
	)
	scoresSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scores_submitted_total",
			Help: "Total number of submitted reader ratings.",
		},
	)
	archiveRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_runs_total",
			Help: "Total number of published-article archive exports by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		articlesSubmitted,
		articleTransitions,
		notificationsSent,
		backgroundTaskFailures,
		scoresSubmitted,
		archiveRuns,
	)
}
