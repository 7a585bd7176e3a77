package gtfs

// Agency is a row of agency.txt
type Agency struct {
	ID   string
	Name string
}

// Route is a row of routes.txt
type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Type      int
}

// Stop is a row of stops.txt
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Trip is a row of trips.txt
type Trip struct {
	ID      string
	RouteID string
}

// StopTime links a trip to a stop it serves
type StopTime struct {
	TripID string
	StopID string
}

// Feed holds the loaded tables in file order
type Feed struct {
	Agencies  []Agency
	Routes    []Route
	Stops     []Stop
	Trips     []Trip
	StopTimes []StopTime
}
