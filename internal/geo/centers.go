package geo

import "github.com/theramap/insights-cli/internal/model"

// defaultCenters is the built-in population center table used when the
// store has none loaded. Populations are 2020 census city figures.
var defaultCenters = []model.PopulationCenter{
	{City: "New York", State: "NY", Latitude: 40.7128, Longitude: -74.0060, Population: 8336817},
	{City: "Los Angeles", State: "CA", Latitude: 34.0522, Longitude: -118.2437, Population: 3898747},
	{City: "Chicago", State: "IL", Latitude: 41.8781, Longitude: -87.6298, Population: 2746388},
	{City: "Houston", State: "TX", Latitude: 29.7604, Longitude: -95.3698, Population: 2304580},
	{City: "Phoenix", State: "AZ", Latitude: 33.4484, Longitude: -112.0740, Population: 1608139},
	{City: "Philadelphia", State: "PA", Latitude: 39.9526, Longitude: -75.1652, Population: 1603797},
	{City: "San Antonio", State: "TX", Latitude: 29.4241, Longitude: -98.4936, Population: 1434625},
	{City: "San Diego", State: "CA", Latitude: 32.7157, Longitude: -117.1611, Population: 1386932},
	{City: "Dallas", State: "TX", Latitude: 32.7767, Longitude: -96.7970, Population: 1304379},
	{City: "Jacksonville", State: "FL", Latitude: 30.3322, Longitude: -81.6557, Population: 949611},
	{City: "Austin", State: "TX", Latitude: 30.2672, Longitude: -97.7431, Population: 961855},
	{City: "Fort Worth", State: "TX", Latitude: 32.7555, Longitude: -97.3308, Population: 918915},
	{City: "Columbus", State: "OH", Latitude: 39.9612, Longitude: -82.9988, Population: 905748},
	{City: "Charlotte", State: "NC", Latitude: 35.2271, Longitude: -80.8431, Population: 874579},
	{City: "Indianapolis", State: "IN", Latitude: 39.7684, Longitude: -86.1581, Population: 887642},
	{City: "San Francisco", State: "CA", Latitude: 37.7749, Longitude: -122.4194, Population: 873965},
	{City: "Seattle", State: "WA", Latitude: 47.6062, Longitude: -122.3321, Population: 737015},
	{City: "Denver", State: "CO", Latitude: 39.7392, Longitude: -104.9903, Population: 715522},
	{City: "Oklahoma City", State: "OK", Latitude: 35.4676, Longitude: -97.5164, Population: 681054},
	{City: "Nashville", State: "TN", Latitude: 36.1627, Longitude: -86.7816, Population: 689447},
	{City: "El Paso", State: "TX", Latitude: 31.7619, Longitude: -106.4850, Population: 678815},
	{City: "Washington", State: "DC", Latitude: 38.9072, Longitude: -77.0369, Population: 689545},
	{City: "Boston", State: "MA", Latitude: 42.3601, Longitude: -71.0589, Population: 675647},
	{City: "Las Vegas", State: "NV", Latitude: 36.1699, Longitude: -115.1398, Population: 641903},
	{City: "Portland", State: "OR", Latitude: 45.5152, Longitude: -122.6784, Population: 652503},
	{City: "Detroit", State: "MI", Latitude: 42.3314, Longitude: -83.0458, Population: 639111},
	{City: "Memphis", State: "TN", Latitude: 35.1495, Longitude: -90.0490, Population: 633104},
	{City: "Louisville", State: "KY", Latitude: 38.2527, Longitude: -85.7585, Population: 633045},
	{City: "Baltimore", State: "MD", Latitude: 39.2904, Longitude: -76.6122, Population: 585708},
	{City: "Milwaukee", State: "WI", Latitude: 43.0389, Longitude: -87.9065, Population: 577222},
	{City: "Albuquerque", State: "NM", Latitude: 35.0844, Longitude: -106.6504, Population: 564559},
	{City: "Tucson", State: "AZ", Latitude: 32.2226, Longitude: -110.9747, Population: 542629},
	{City: "Fresno", State: "CA", Latitude: 36.7378, Longitude: -119.7871, Population: 542107},
	{City: "Sacramento", State: "CA", Latitude: 38.5816, Longitude: -121.4944, Population: 524943},
	{City: "Kansas City", State: "MO", Latitude: 39.0997, Longitude: -94.5786, Population: 508090},
	{City: "Atlanta", State: "GA", Latitude: 33.7490, Longitude: -84.3880, Population: 498715},
	{City: "Omaha", State: "NE", Latitude: 41.2565, Longitude: -95.9345, Population: 486051},
	{City: "Colorado Springs", State: "CO", Latitude: 38.8339, Longitude: -104.8214, Population: 478961},
	{City: "Raleigh", State: "NC", Latitude: 35.7796, Longitude: -78.6382, Population: 467665},
	{City: "Miami", State: "FL", Latitude: 25.7617, Longitude: -80.1918, Population: 442241},
	{City: "Minneapolis", State: "MN", Latitude: 44.9778, Longitude: -93.2650, Population: 429954},
	{City: "Tulsa", State: "OK", Latitude: 36.1540, Longitude: -95.9928, Population: 413066},
	{City: "Bakersfield", State: "CA", Latitude: 35.3733, Longitude: -119.0187, Population: 380874},
	{City: "Wichita", State: "KS", Latitude: 37.6872, Longitude: -97.3301, Population: 397532},
	{City: "Arlington", State: "TX", Latitude: 32.7357, Longitude: -97.1081, Population: 394266},
	{City: "Aurora", State: "CO", Latitude: 39.7294, Longitude: -104.8319, Population: 386261},
	{City: "Tampa", State: "FL", Latitude: 27.9506, Longitude: -82.4572, Population: 384959},
	{City: "New Orleans", State: "LA", Latitude: 29.9511, Longitude: -90.0715, Population: 383997},
	{City: "Cleveland", State: "OH", Latitude: 41.4993, Longitude: -81.6944, Population: 372624},
	{City: "Boise", State: "ID", Latitude: 43.6150, Longitude: -116.2023, Population: 235684},
}

// DefaultCenters returns a copy of the built-in population center table.
func DefaultCenters() []model.PopulationCenter {
	out := make([]model.PopulationCenter, len(defaultCenters))
	copy(out, defaultCenters)
	return out
}
