package ports

import "context"

// Features is the fixed-shape input of the duration model.
// Field order is the feature order the model was trained on.
type Features struct {
	OriginLat        float64 `json:"senderLat"`
	OriginLng        float64 `json:"senderLng"`
	DestinationLat   float64 `json:"receiverLat"`
	DestinationLng   float64 `json:"receiverLng"`
	Weight           float64 `json:"weight"`
	Hour             int     `json:"order_hour"`
	Day              int     `json:"order_day"`
	ShippingDistance float64 `json:"shippingDistance"`
}

// Vector returns the features in model order.
func (f Features) Vector() []float64 {
	return []float64{
		f.OriginLat,
		f.OriginLng,
		f.DestinationLat,
		f.DestinationLng,
		f.Weight,
		float64(f.Hour),
		float64(f.Day),
		f.ShippingDistance,
	}
}

// FeatureCount is the length of Features.Vector.
const FeatureCount = 8

// DurationPredictor estimates travel duration in seconds for one pair.
type DurationPredictor interface {
	Predict(ctx context.Context, f Features) (float64, error)
}
