// Package metrics содержит метрики Prometheus конвейера анализа.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat_analyzer"

// Исходы анализа для метки result.
const (
	ResultOK     = "ok"
	ResultCached = "cached"
	ResultFailed = "failed"
)

// Metrics собирает счетчики конвейера. Нулевой указатель допустим: все методы
// ничего не делают, что удобно для CLI и тестов.
type Metrics struct {
	analyses       *prometheus.CounterVec
	messages       prometheus.Counter
	discardedLines prometheus.Counter
	duration       prometheus.Histogram
	activeTasks    prometheus.Gauge
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Number of transcript analyses by result.",
		}, []string{"result"}),
		messages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_parsed_total",
			Help:      "Number of messages produced by the transcript parser.",
		}),
		discardedLines: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discarded_lines_total",
			Help:      "Number of non-blank lines the parser could not attach to any message.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent parsing and aggregating one transcript.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		activeTasks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_active",
			Help:      "Number of background analysis tasks in progress.",
		}),
	}
}

// ObserveAnalysis учитывает завершенный анализ.
func (m *Metrics) ObserveAnalysis(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(result).Inc()
	if result != ResultCached {
		m.duration.Observe(elapsed.Seconds())
	}
}

// ObserveParse учитывает результат разбора расшифровки.
func (m *Metrics) ObserveParse(messages, discarded int) {
	if m == nil {
		return
	}
	m.messages.Add(float64(messages))
	m.discardedLines.Add(float64(discarded))
}

// TaskStarted и TaskFinished отслеживают число фоновых задач.
func (m *Metrics) TaskStarted() {
	if m != nil {
		m.activeTasks.Inc()
	}
}

func (m *Metrics) TaskFinished() {
	if m != nil {
		m.activeTasks.Dec()
	}
}

// RegisterGaugeFunc регистрирует метрику, значение которой вычисляется при сборе,
// например размер кэша.
func RegisterGaugeFunc(reg prometheus.Registerer, name, help string, fn func() float64) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn)
}
