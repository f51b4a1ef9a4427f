// Package engine computes steady-state spark-ignition performance
// curves for ethanol-petrol blends: volumetric efficiency, air and
// fuel mass flow, thermal efficiency, brake power, torque and BSFC
// per point of an RPM sweep.
package engine

const (
	airDensity = 1.225 // kg/m³ at sea level

	// A four-stroke engine draws one intake charge per two revolutions.
	revsPerIntake = 2

	// kW and rev/min to N·m: 60000/(2π), rounded.
	torqueFactor = 9550

	// Volumetric efficiency peaks at peakRPM and falls off
	// quadratically, clamped at veFloor.
	peakRPM = 3000
	vePeak  = 0.90
	veCurve = 0.000002
	veFloor = 0.70

	secondsPerHour = 3600
)

// ComputePoint evaluates the full chain at a single engine speed.
// Inputs are assumed validated; the function itself is pure and has
// no error paths.
func ComputePoint(geo Geometry, fuel Fuel, rpm float64) Point {
	ve := vePeak - veCurve*(rpm-peakRPM)*(rpm-peakRPM)
	if ve < veFloor {
		ve = veFloor
	}

	airFlow := rpm / revsPerIntake * geo.SweptVolume() * airDensity * ve
	fuelFlow := airFlow / fuel.AFR

	eta := fuel.EtaPeak - fuel.EtaCurve*(rpm-peakRPM)*(rpm-peakRPM)
	if eta < fuel.EtaFloor {
		eta = fuel.EtaFloor
	}

	power := fuelFlow * fuel.LHV * eta / 1000
	torque := power * torqueFactor / rpm

	// kg/h per kW. Validated inputs guarantee power > 0 (positive
	// flows, efficiency floored above zero); a bypassed validation
	// yields IEEE Inf here rather than a panic.
	bsfc := fuelFlow * secondsPerHour / power

	return Point{
		RPM:                  rpm,
		VolumetricEfficiency: ve,
		AirMassFlow:          airFlow,
		FuelMassFlow:         fuelFlow,
		Efficiency:           eta,
		Power:                power,
		Torque:               torque,
		BSFC:                 bsfc,
	}
}

// Compute evaluates the sweep for one blend and assembles the output
// series. The result is index-aligned with rpm.
func Compute(geo Geometry, fuel Fuel, rpm []float64) *Series {
	s := &Series{
		Fuel:       fuel.Name,
		RPM:        make([]float64, len(rpm)),
		Power:      make([]float64, len(rpm)),
		Torque:     make([]float64, len(rpm)),
		BSFC:       make([]float64, len(rpm)),
		Efficiency: make([]float64, len(rpm)),
	}

	for i, r := range rpm {
		p := ComputePoint(geo, fuel, r)
		s.RPM[i] = p.RPM
		s.Power[i] = p.Power
		s.Torque[i] = p.Torque
		s.BSFC[i] = p.BSFC
		s.Efficiency[i] = p.Efficiency
	}

	return s
}
