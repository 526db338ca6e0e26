package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordZoneClimate writes one zone climate sample.
//
// The write is non-blocking; samples are batched and sent
// asynchronously. Nothing is recorded while disconnected.
//
// Parameters:
//   - deviceKey: flattened device identity (e.g. "1_2")
//   - fields: numeric/boolean sample values (setpoint, work temp,
//     humidity, power, active)
func (r *Recorder) RecordZoneClimate(deviceKey string, fields map[string]any) {
	if !r.IsConnected() || len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"zone_climate",
		map[string]string{
			"device_id": deviceKey,
		},
		fields,
		time.Now(),
	)

	r.writeAPI.WritePoint(point)
}

// RecordAvailability writes one availability transition for a device or
// for the gateway itself (deviceKey "gateway").
func (r *Recorder) RecordAvailability(deviceKey string, online bool) {
	if !r.IsConnected() {
		return
	}

	point := write.NewPoint(
		"availability",
		map[string]string{
			"device_id": deviceKey,
		},
		map[string]any{
			"online": online,
		},
		time.Now(),
	)

	r.writeAPI.WritePoint(point)
}

// RecordPoint writes a custom point with full control over tags and
// fields, for measurements that don't fit the helpers.
func (r *Recorder) RecordPoint(measurement string, tags map[string]string, fields map[string]any) {
	if !r.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	r.writeAPI.WritePoint(point)
}
