package metrics

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SystemCollector periodically samples runtime stats into Metrics.
type SystemCollector struct {
	metrics   *Metrics
	logger    *zap.Logger
	startTime time.Time
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewSystemCollector(metrics *Metrics, logger *zap.Logger) *SystemCollector {
	return &SystemCollector{
		metrics:   metrics,
		logger:    logger,
		startTime: time.Now(),
		stopCh:    make(chan struct{}),
	}
}

func (sc *SystemCollector) Start(interval time.Duration, version string) {
	sc.ticker = time.NewTicker(interval)
	sc.metrics.SetServiceVersion(version, "unknown", sc.startTime.Format("2006-01-02"))

	go sc.collectLoop()
	sc.logger.Info("System metrics collector started", zap.Duration("interval", interval))
}

func (sc *SystemCollector) Stop() {
	sc.stopOnce.Do(func() {
		if sc.ticker != nil {
			sc.ticker.Stop()
		}
		close(sc.stopCh)
		sc.logger.Info("System metrics collector stopped")
	})
}

func (sc *SystemCollector) collectLoop() {
	sc.collect()

	for {
		select {
		case <-sc.ticker.C:
			sc.collect()
		case <-sc.stopCh:
			return
		}
	}
}

func (sc *SystemCollector) collect() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sc.metrics.UpdateSystemMetrics(time.Since(sc.startTime), &memStats)
}
