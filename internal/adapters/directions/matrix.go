package directions

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"fmt"
	"net/url"
)

const (
	maxMapboxMatrixCoordinates = 25
	maxOSRMMatrixCoordinates   = 100
)

type matrixResponse struct {
	Code      string       `json:"code"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// MaxMatrixCoordinates is the largest point set a single matrix request accepts.
func (c *Client) MaxMatrixCoordinates() int {
	if c.flavor == FlavorMapbox {
		return maxMapboxMatrixCoordinates
	}
	return maxOSRMMatrixCoordinates
}

func (c *Client) matrixURL(coords []domain.Coordinates) string {
	params := url.Values{}
	params.Set("annotations", "distance,duration")

	var endpoint string
	switch c.flavor {
	case FlavorMapbox:
		params.Set("access_token", c.accessToken)
		endpoint = fmt.Sprintf("%s/directions-matrix/v1/mapbox/%s/%s", c.baseURL, c.profile, joinCoordinates(coords))
	default:
		endpoint = fmt.Sprintf("%s/table/v1/%s/%s", c.baseURL, c.profile, joinCoordinates(coords))
	}

	return endpoint + "?" + params.Encode()
}

// Matrix retrieves distance and duration between every ordered pair of
// coordinates in a single table request. Cells the service could not route
// come back with OK=false.
func (c *Client) Matrix(
	ctx context.Context,
	coords []domain.Coordinates,
) (_ [][]ports.MatrixCell, err error) {
	defer obs.Time(ctx, "directions.Matrix")(&err)

	n := len(coords)
	if n == 0 {
		return [][]ports.MatrixCell{}, nil
	}
	if n > c.MaxMatrixCoordinates() {
		return nil, fmt.Errorf("matrix: %d coordinates: %w", n, ErrMatrixTooLarge)
	}

	endpoint := c.matrixURL(coords)

	var mr matrixResponse
	if err := c.getJSON(ctx, endpoint, &mr); err != nil {
		return nil, fmt.Errorf("matrix %d coordinates: %w", n, err)
	}

	if mr.Code != "" && mr.Code != "Ok" {
		return nil, fmt.Errorf("matrix: provider code %q", mr.Code)
	}

	if len(mr.Distances) != n || len(mr.Durations) != n {
		return nil, fmt.Errorf(
			"expected %d rows; got distances=%d durations=%d",
			n, len(mr.Distances), len(mr.Durations),
		)
	}

	out := make([][]ports.MatrixCell, n)
	for i := 0; i < n; i++ {
		if len(mr.Distances[i]) != n || len(mr.Durations[i]) != n {
			return nil, fmt.Errorf(
				"row %d lengths do not match coordinates: distances=%d durations=%d coordinates=%d",
				i, len(mr.Distances[i]), len(mr.Durations[i]), n,
			)
		}

		out[i] = make([]ports.MatrixCell, n)
		for j := 0; j < n; j++ {
			metersPtr := mr.Distances[i][j]
			secondsPtr := mr.Durations[i][j]
			if metersPtr == nil || secondsPtr == nil {
				continue
			}
			out[i][j] = ports.MatrixCell{
				DistanceMeters:  *metersPtr,
				DurationSeconds: *secondsPtr,
				OK:              true,
			}
		}
	}

	return out, nil
}
