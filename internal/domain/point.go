package domain

// PointKind classifies a stop in a single optimization request.
type PointKind string

const (
	KindCurrentLocation PointKind = "current_location"
	KindOrder           PointKind = "order"
	KindWarehouse       PointKind = "warehouse"
)

const (
	CurrentLocationID = "current_location_0"
	WarehouseID       = "warehouse_final"
)

// Point is one node of the routing problem.
// Weight is only meaningful for orders.
type Point struct {
	ID     *string
	Kind   PointKind
	Coords Coordinates
	Weight float64
}

// Order is a pending delivery as received from the caller.
type Order struct {
	ID     string
	Coords Coordinates
	Weight float64
}

// NewPointSet builds the point list for one request.
// Index 0 is always the current location and the last index is always the
// warehouse; orders keep their input order in between.
func NewPointSet(current Coordinates, orders []Order, warehouse Coordinates) []Point {
	points := make([]Point, 0, len(orders)+2)

	currentID := CurrentLocationID
	points = append(points, Point{ID: &currentID, Kind: KindCurrentLocation, Coords: current})

	for _, o := range orders {
		id := o.ID
		points = append(points, Point{ID: &id, Kind: KindOrder, Coords: o.Coords, Weight: o.Weight})
	}

	warehouseID := WarehouseID
	points = append(points, Point{ID: &warehouseID, Kind: KindWarehouse, Coords: warehouse})

	return points
}

// DestinationWeight is the order weight used as a predictor feature.
// Non-order points weigh nothing.
func (p Point) DestinationWeight() float64 {
	if p.Kind != KindOrder {
		return 0
	}
	return p.Weight
}

// Label returns the point id, or its kind for anonymous points.
func (p Point) Label() string {
	if p.ID != nil {
		return *p.ID
	}
	return string(p.Kind)
}
