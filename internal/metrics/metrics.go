// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forkful_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forkful_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forkful_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forkful_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"limiter"},
	)

	// Domain
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkful_users_registered_total",
			Help: "Accounts created",
		},
	)

	RecipesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkful_recipes_created_total",
			Help: "Recipes created",
		},
	)

	RecipeViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkful_recipe_views_total",
			Help: "Recipe detail views",
		},
	)

	RatingsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forkful_ratings_upserted_total",
			Help: "Rating upserts by outcome",
		},
		[]string{"outcome"}, // "created", "updated"
	)

	CommentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkful_comments_created_total",
			Help: "Comments created",
		},
	)

	FollowToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forkful_follow_toggles_total",
			Help: "Follow toggles by resulting state",
		},
		[]string{"state"}, // "followed", "unfollowed"
	)

	SaveToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forkful_save_toggles_total",
			Help: "Save toggles by resulting state",
		},
		[]string{"state"}, // "saved", "unsaved"
	)

	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forkful_image_uploads_total",
			Help: "Image uploads by kind and result",
		},
		[]string{"kind", "result"},
	)
)

// RecordHTTPRequest records a finished request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight requests
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

func RecordRating(created bool) {
	if created {
		RatingsUpserted.WithLabelValues("created").Inc()
		return
	}
	RatingsUpserted.WithLabelValues("updated").Inc()
}

func RecordFollow(following bool) {
	if following {
		FollowToggles.WithLabelValues("followed").Inc()
		return
	}
	FollowToggles.WithLabelValues("unfollowed").Inc()
}

func RecordSave(saved bool) {
	if saved {
		SaveToggles.WithLabelValues("saved").Inc()
		return
	}
	SaveToggles.WithLabelValues("unsaved").Inc()
}

// RecordImageUpload counts an upload attempt for kind ("profile" or "recipe")
func RecordImageUpload(kind string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ImageUploads.WithLabelValues(kind, result).Inc()
}
