package obs

import (
	"pricestream/internal/model/enum"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pricestream"

// DepthFunc reports the current relay occupancy.
type DepthFunc func() int

// Collector exposes a Metrics snapshot to prometheus.
type Collector struct {
	metrics *Metrics
	depth   DepthFunc

	events           *prometheus.Desc
	parseErrors      *prometheus.Desc
	decodeDowngrades *prometheus.Desc
	convertErrors    *prometheus.Desc
	publishErrors    *prometheus.Desc
	published        *prometheus.Desc
	publishLatency   *prometheus.Desc
	relayDepth       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector wraps m. depth may be nil.
func NewCollector(m *Metrics, depth DepthFunc) *Collector {
	return &Collector{
		metrics: m,
		depth:   depth,
		events: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "events_total"),
			"Classified stream events by kind.", []string{"kind"}, nil),
		parseErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "parse_errors_total"),
			"Stream lines skipped because they were not valid JSON.", nil, nil),
		decodeDowngrades: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "decode_downgrades_total"),
			"Lines downgraded to unrecognized after a failed strict decode.", nil, nil),
		convertErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "convert_errors_total"),
			"Events not published because wire conversion failed.", nil, nil),
		publishErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "publish_errors_total"),
			"Frames the socket refused to send.", nil, nil),
		published: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "published_frames_total"),
			"Frames sent on the publish socket.", nil, nil),
		publishLatency: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "publish_latency_seconds"),
			"Time between reading a line and publishing its frame.", nil, nil),
		relayDepth: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "relay_depth"),
			"Events waiting in the relay.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.events
	ch <- c.parseErrors
	ch <- c.decodeDowngrades
	ch <- c.convertErrors
	ch <- c.publishErrors
	ch <- c.published
	ch <- c.publishLatency
	ch <- c.relayDepth
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()

	for _, kind := range []enum.EventKind{enum.EventPriceTick, enum.EventHeartbeat, enum.EventUnrecognized} {
		ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue, float64(s.EventCounts[kind]), kind.String())
	}
	ch <- prometheus.MustNewConstMetric(c.parseErrors, prometheus.CounterValue, float64(s.ParseErrors))
	ch <- prometheus.MustNewConstMetric(c.decodeDowngrades, prometheus.CounterValue, float64(s.DecodeDowngrades))
	ch <- prometheus.MustNewConstMetric(c.convertErrors, prometheus.CounterValue, float64(s.ConvertErrors))
	ch <- prometheus.MustNewConstMetric(c.publishErrors, prometheus.CounterValue, float64(s.PublishErrors))
	ch <- prometheus.MustNewConstMetric(c.published, prometheus.CounterValue, float64(s.Published))
	ch <- prometheus.MustNewConstSummary(c.publishLatency, s.PublishLatency.Count, s.PublishLatency.Sum.Seconds(), nil)

	if c.depth != nil {
		ch <- prometheus.MustNewConstMetric(c.relayDepth, prometheus.GaugeValue, float64(c.depth()))
	}
}
