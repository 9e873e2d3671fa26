package gtfsstatic

type Stop struct {
	ID        string  `csv:"stop_id"`
	Code      string  `csv:"stop_code"`
	Name      string  `csv:"stop_name"`
	Latitude  float64 `csv:"stop_lat"`
	Longitude float64 `csv:"stop_lon"`
	Type      string  `csv:"location_type"`
	Parent    string  `csv:"parent_station"`
}

type Trip struct {
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	ID          string `csv:"trip_id"`
	Headsign    string `csv:"trip_headsign"`
	ShapeID     string `csv:"shape_id"`
	DirectionID string `csv:"direction_id"`
}

type StopTime struct {
	TripID       string `csv:"trip_id"`
	StopID       string `csv:"stop_id"`
	StopSequence int    `csv:"stop_sequence"`
}

type Shape struct {
	ID        string  `csv:"shape_id"`
	Latitude  float64 `csv:"shape_pt_lat"`
	Longitude float64 `csv:"shape_pt_lon"`
	Sequence  int     `csv:"shape_pt_sequence"`
}
