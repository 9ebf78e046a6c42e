/*
Package monitoring provides Prometheus metrics for the bridge.

# Metrics

  - bridge_session_restores_total{status,reason}
  - bridge_session_saves_total{status,reason,trigger}
  - bridge_session_sync_duration_seconds{op}
  - bridge_session_artifact_bytes, bridge_session_state{state}
  - bridge_posts_forwarded_total{kind,status}
  - bridge_client_events_total{kind}, bridge_client_ready
  - bridge_http_requests_total, bridge_ws_connections, bridge_uptime_seconds

Each Metrics value owns its registry, so tests can build as many as they
like. A nil *Metrics records nothing.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
