// Package metrics provides a Prometheus metric registry shared by tempo
// components.
//
// Components never register metrics directly; they use a Registry built
// with NewRegistry so that multiple schedulers can either share the default
// registerer or isolate their metrics in a dedicated one:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{Enabled: true, Registry: registry}
//	s, err := scheduler.NewWithConfigAndMetrics(scheduler.Config{WorkerCount: 4}, "jobs", config)
package metrics
