package transit

type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude" groups:"basic"`
	Longitude float64 `json:"longitude" bson:"longitude" groups:"basic"`
}
