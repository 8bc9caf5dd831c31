package directions

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Flavor selects the routing service dialect.
type Flavor string

const (
	FlavorMapbox Flavor = "mapbox"
	FlavorOSRM   Flavor = "osrm"
)

var (
	ErrNoRoute        = errors.New("routing provider returned no route")
	ErrMatrixTooLarge = errors.New("too many coordinates for a matrix request")
)

type Options struct {
	Flavor      Flavor
	BaseURL     string
	AccessToken string
	Profile     string
	Timeout     time.Duration
	MaxAttempts int
}

// Client implements RoutingProvider and MatrixProvider against the Mapbox
// Directions/Matrix APIs or an OSRM server. Both share the route response
// shape, so only URL construction differs.
//
// The client is safe for concurrent use.
type Client struct {
	session     *http.Client
	flavor      Flavor
	baseURL     string
	accessToken string
	profile     string
	maxAttempts int
	backoff     time.Duration
}

func NewClient(opts Options) (*Client, error) {
	c := &Client{
		session:     &http.Client{Timeout: opts.Timeout},
		flavor:      opts.Flavor,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		accessToken: opts.AccessToken,
		profile:     opts.Profile,
		maxAttempts: opts.MaxAttempts,
		backoff:     200 * time.Millisecond,
	}

	if c.session.Timeout <= 0 {
		c.session.Timeout = 10 * time.Second
	}
	if c.profile == "" {
		c.profile = "driving"
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}

	switch c.flavor {
	case FlavorMapbox:
		if strings.TrimSpace(c.accessToken) == "" {
			return nil, errors.New("mapbox access token is empty")
		}
		if c.baseURL == "" {
			c.baseURL = "https://api.mapbox.com"
		}
	case FlavorOSRM:
		if c.baseURL == "" {
			c.baseURL = "https://router.project-osrm.org"
		}
	default:
		return nil, fmt.Errorf("unknown routing provider flavor %q", c.flavor)
	}

	return c, nil
}

type routeResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []routeJSON `json:"routes"`
}

type routeJSON struct {
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Geometry string    `json:"geometry"`
	Legs     []legJSON `json:"legs"`
}

type legJSON struct {
	Summary  string     `json:"summary"`
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []stepJSON `json:"steps"`
}

type stepJSON struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Mode     string  `json:"mode"`
	Maneuver struct {
		Instruction  string   `json:"instruction"`
		Type         string   `json:"type"`
		Modifier     string   `json:"modifier"`
		BearingAfter *float64 `json:"bearing_after"`
	} `json:"maneuver"`
	Intersections []intersectionJSON `json:"intersections"`
}

type intersectionJSON struct {
	Location [2]float64 `json:"location"`
	Bearings []int      `json:"bearings"`
	Entry    []bool     `json:"entry"`
	In       *int       `json:"in"`
	Out      *int       `json:"out"`
}

func joinCoordinates(coords []domain.Coordinates) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}

func (c *Client) routeURL(q ports.RouteQuery) string {
	overview := q.Overview
	if overview == "" {
		overview = ports.OverviewSimplified
	}

	params := url.Values{}
	params.Set("alternatives", "false")
	params.Set("geometries", "polyline")
	params.Set("steps", strconv.FormatBool(q.Steps))
	params.Set("overview", string(overview))

	var endpoint string
	switch c.flavor {
	case FlavorMapbox:
		params.Set("access_token", c.accessToken)
		endpoint = fmt.Sprintf("%s/directions/v5/mapbox/%s/%s", c.baseURL, c.profile, joinCoordinates(q.Coordinates))
	default:
		endpoint = fmt.Sprintf("%s/route/v1/%s/%s", c.baseURL, c.profile, joinCoordinates(q.Coordinates))
	}

	return endpoint + "?" + params.Encode()
}

// Route returns the first candidate route through the coordinates.
func (c *Client) Route(ctx context.Context, q ports.RouteQuery) (_ *ports.RouteData, err error) {
	defer obs.Time(ctx, "directions.Route")(&err)

	if len(q.Coordinates) < 2 {
		return nil, errors.New("route: at least two coordinates are required")
	}

	endpoint := c.routeURL(q)

	var decoded routeResponse
	if err := c.getJSON(ctx, endpoint, &decoded); err != nil {
		return nil, fmt.Errorf("route %s: %w", joinCoordinates(q.Coordinates), err)
	}

	if (decoded.Code != "" && decoded.Code != "Ok") || len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("route %s: %w (code=%q)", joinCoordinates(q.Coordinates), ErrNoRoute, decoded.Code)
	}

	return toRouteData(decoded.Routes[0]), nil
}

func toRouteData(r routeJSON) *ports.RouteData {
	out := &ports.RouteData{
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
		Geometry:        r.Geometry,
	}

	for _, l := range r.Legs {
		leg := domain.Leg{
			Summary:  l.Summary,
			Distance: l.Distance,
			Duration: l.Duration,
			Steps:    make([]domain.Step, 0, len(l.Steps)),
		}
		for _, s := range l.Steps {
			step := domain.Step{
				Instruction: s.Maneuver.Instruction,
				Name:        s.Name,
				Distance:    s.Distance,
				Duration:    s.Duration,
				Type:        s.Maneuver.Type,
				Modifier:    s.Maneuver.Modifier,
				ExitBearing: s.Maneuver.BearingAfter,
				Mode:        s.Mode,
			}
			for _, in := range s.Intersections {
				step.Intersections = append(step.Intersections, domain.Intersection{
					Location: in.Location,
					Bearings: in.Bearings,
					Entry:    in.Entry,
					In:       in.In,
					Out:      in.Out,
				})
			}
			leg.Steps = append(leg.Steps, step)
		}
		out.Legs = append(out.Legs, leg)
	}

	return out
}

// redact strips the request URL, which carries the access token, from transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request: %w", ue.Op, ue.Err)
	}
	return err
}
