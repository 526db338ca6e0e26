// Package telemetry records zone climate samples to InfluxDB.
//
// Recording is optional and strictly best effort: when telemetry is
// disabled in config, Connect returns ErrDisabled and the bridge runs
// without it. Writes are non-blocking and batched by the underlying
// InfluxDB client, so a slow or unreachable server never stalls the
// message pipeline.
//
// Usage:
//
//	rec, err := telemetry.Connect(cfg.Telemetry)
//	if errors.Is(err, telemetry.ErrDisabled) {
//		rec = nil
//	}
//	...
//	rec.RecordZoneClimate("1_2", map[string]any{"setpoint": 21.5})
package telemetry
