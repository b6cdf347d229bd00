// Package control turns a reading and the operator targets into actuator state.
package control

import "greenhouse_controller/internal/models"

// Decide is a bang-bang rule evaluated per actuator: an actuator is on only
// while the reading is strictly below its target. Equality turns it off.
func Decide(target models.Setpoint, current models.Reading) models.Control {
	return models.Control{
		HeaterOn:     current.TemperatureC < target.TemperatureC,
		HumidifierOn: current.HumidityPct < target.HumidityPct,
	}
}
