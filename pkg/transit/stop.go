package transit

type Stop struct {
	PrimaryIdentifier string `json:"id" bson:"id" groups:"basic"`
	Code              string `json:"code" bson:"code" groups:"basic"`
	Name              string `json:"name" bson:"name" groups:"basic"`

	Location Location `json:"location" bson:"location" groups:"basic"`
}
