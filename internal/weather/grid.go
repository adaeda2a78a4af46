package weather

import "math"

// KMA Lambert Conformal Conic grid parameters.
const (
	earthRadiusKm = 6371.00877
	gridSpacingKm = 5.0
	stdParallel1  = 30.0
	stdParallel2  = 60.0
	originLon     = 126.0
	originLat     = 38.0
	originX       = 43
	originY       = 136
)

const degToRad = math.Pi / 180.0

// Project converts a WGS84 position into a KMA forecast grid cell.
// Positions outside the Korean service area are projected all the same;
// rejecting them is the caller's concern.
func Project(p GeoPoint) GridCell {
	re := earthRadiusKm / gridSpacingKm
	slat1 := stdParallel1 * degToRad
	slat2 := stdParallel2 * degToRad
	olon := originLon * degToRad
	olat := originLat * degToRad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)

	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn

	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	ra := math.Tan(math.Pi*0.25 + p.Lat*degToRad*0.5)
	ra = re * sf / math.Pow(ra, sn)

	theta := p.Lon*degToRad - olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= sn

	return GridCell{
		X: int(math.Floor(ra*math.Sin(theta) + originX + 0.5)),
		Y: int(math.Floor(ro - ra*math.Cos(theta) + originY + 0.5)),
	}
}
