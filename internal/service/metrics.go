package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postsAdmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tatami_posts_admitted_total",
			Help: "Admitted posts by board",
		},
		[]string{"board"},
	)

	postRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tatami_post_rejections_total",
			Help: "Rejected post attempts by reason",
		},
		[]string{"reason"},
	)

	threadsEvictedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tatami_threads_evicted_total",
			Help: "Threads evicted to enforce per-board capacity",
		},
		[]string{"board"},
	)

	boardsOverCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tatami_boards_over_capacity",
			Help: "Boards currently flagged as transiently over capacity after a failed eviction",
		},
	)
)
