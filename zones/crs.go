package zones

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ErrUnsupportedCRS means no projection from WGS84 is known for a CRS code
var ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

// GRS80 ellipsoid, used by the ETRS89 projections
const (
	grs80A = 6378137.0
	grs80F = 1 / 298.257222101
)

// Projection returns the projection from WGS84 [lon, lat] into the given
// CRS. An empty code or EPSG:4326 keeps [lon, lat].
//
// Supported codes:
//
//	EPSG:4326            WGS84 lon/lat
//	EPSG:3857            web mercator
//	EPSG:3067            ETRS-TM35FIN
//	EPSG:3873..3885      ETRS-GK19FIN .. ETRS-GK31FIN
//	EPSG:25828..25838    ETRS89 / UTM zones 28N .. 38N
func Projection(crs string) (orb.Projection, error) {
	code := strings.TrimSpace(strings.ToUpper(crs))
	if code == "" {
		return identity, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(code, "EPSG:"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCRS, crs)
	}

	switch {
	case n == 4326:
		return identity, nil
	case n == 3857:
		return project.WGS84.ToMercator, nil
	case n == 3067:
		return transverseMercator(27, 0.9996, 500000, 0), nil
	case n >= 3873 && n <= 3885:
		// GK zones are named by central meridian, false easting carries it
		cm := float64(n - 3873 + 19)
		return transverseMercator(cm, 1, cm*1e6+500000, 0), nil
	case n >= 25828 && n <= 25838:
		zone := float64(n - 25800)
		return transverseMercator(zone*6-183, 0.9996, 500000, 0), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCRS, crs)
}

func identity(p orb.Point) orb.Point { return p }

// transverseMercator projects onto GRS80 with the Krüger series to n^4.
func transverseMercator(centralMeridian, k0, falseEasting, falseNorthing float64) orb.Projection {
	n := grs80F / (2 - grs80F)
	n2, n3, n4 := n*n, n*n*n, n*n*n*n
	a := grs80A / (1 + n) * (1 + n2/4 + n4/64)
	alpha := [4]float64{
		n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180,
		13*n2/48 - 3*n3/5 + 557*n4/1440,
		61*n3/240 - 103*n4/140,
		49561 * n4 / 161280,
	}
	e := math.Sqrt(grs80F * (2 - grs80F))
	lon0 := centralMeridian * math.Pi / 180

	return func(p orb.Point) orb.Point {
		phi := p[1] * math.Pi / 180
		lambda := p[0]*math.Pi/180 - lon0

		sin := math.Sin(phi)
		t := math.Sinh(math.Atanh(sin) - e*math.Atanh(e*sin))
		xi := math.Atan2(t, math.Cos(lambda))
		eta := math.Atanh(math.Sin(lambda) / math.Sqrt(1+t*t))

		x, y := xi, eta
		for j, al := range alpha {
			k := 2 * float64(j+1)
			x += al * math.Sin(k*xi) * math.Cosh(k*eta)
			y += al * math.Cos(k*xi) * math.Sinh(k*eta)
		}
		return orb.Point{falseEasting + k0*a*y, falseNorthing + k0*a*x}
	}
}
