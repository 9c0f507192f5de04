// Package telemetry provides obsrv.Observer implementations for Prometheus
// metrics and OpenTelemetry tracing.
//
//	reg := prometheus.NewRegistry()
//	store, err := obsrv.New(desc,
//	    obsrv.WithObserver(
//	        telemetry.OpenTelemetry(telemetry.WithTracerName("checkout")),
//	        telemetry.Prometheus(telemetry.WithRegistry(reg)),
//	    ),
//	)
package telemetry
