package transit

// Vehicle is a single realtime vehicle position as delivered by a feed
// snapshot. Location is nil when the feed entry carried no coordinates.
type Vehicle struct {
	PrimaryIdentifier string `json:"id" bson:"id"`

	RouteID     string `json:"routeId" bson:"routeid"`
	DirectionID string `json:"directionId,omitempty" bson:"directionid,omitempty"`
	TripID      string `json:"tripId,omitempty" bson:"tripid,omitempty"`

	Location *Location `json:"location" bson:"location"`
}
