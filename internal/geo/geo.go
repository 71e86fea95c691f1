// Package geo provides the pure geospatial helpers used by the tracking
// read path: great-circle distance and a coarse ETA estimate.  No state,
// no I/O.
package geo

import "math"

const (
    // earthRadiusM is the mean Earth radius used by the haversine formula.
    earthRadiusM = 6371000.0

    // DefaultUrbanSpeedMS is the fallback average speed (~30 km/h) applied
    // when a driver reports no usable speed.
    DefaultUrbanSpeedMS = 8.33
)

// Distance returns the great-circle distance in meters between two
// coordinates, computed with the haversine formulation.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
    phi1 := lat1 * math.Pi / 180
    phi2 := lat2 * math.Pi / 180
    dPhi := (lat2 - lat1) * math.Pi / 180
    dLambda := (lng2 - lng1) * math.Pi / 180

    a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
        math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
    c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

    return earthRadiusM * c
}

// EstimateETA returns the estimated travel time in whole minutes from the
// driver's position to the destination.  A non-positive speed falls back to
// DefaultUrbanSpeedMS.  The result is rounded to the nearest minute.
func EstimateETA(driverLat, driverLng, destLat, destLng, speedMS float64) int {
    if speedMS <= 0 {
        speedMS = DefaultUrbanSpeedMS
    }
    seconds := Distance(driverLat, driverLng, destLat, destLng) / speedMS
    return int(math.Round(seconds / 60))
}
