// Package ingest loads a raw listing catalog export, flattens each record
// into its filterable payload, embeds its descriptive text and writes it to
// the vector store.
package ingest

// rawCatalog mirrors the catalog export file layout: a top-level "properties"
// array whose entries each wrap one record under a "property" key.
type rawCatalog struct {
	Properties []rawEnvelope `json:"properties"`
}

type rawEnvelope struct {
	Property rawProperty `json:"property"`
}

type rawProperty struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	UnitNumber      *string         `json:"unit_number"`
	BuildingID      string          `json:"building_id"`
	Address         rawAddress      `json:"address"`
	Area            rawArea         `json:"area"`
	Type            string          `json:"type"`
	Floor           *string         `json:"floor"`
	Contract        *rawContract    `json:"contract"`
	YearBuilt       int             `json:"year_built"`
	Price           rawPrice        `json:"price"`
	InitialCost     rawInitialCost  `json:"initial_cost_estimate"`
	Requirements    map[string]any  `json:"requirements"`
	Features        rawFeatures     `json:"features"`
	NearestStations []rawStation    `json:"nearest_stations"`
}

type rawAddress struct {
	Full      string  `json:"full"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type rawArea struct {
	M2         float64 `json:"m2"`
	Ft2        float64 `json:"ft2"`
	PricePerM2 float64 `json:"price_per_m2"`
}

type rawPrice struct {
	MonthlyTotal  int    `json:"monthly_total"`
	Rent          int    `json:"rent"`
	ManagementFee int    `json:"management_fee"`
	Currency      string `json:"currency"`
}

type rawInitialCost struct {
	FirstMonthRent   int  `json:"first_month_rent"`
	GuarantorService int  `json:"guarantor_service"`
	FireInsurance    *int `json:"fire_insurance"`
	AgencyFee        int  `json:"agency_fee"`
	EstimatedTotal   int  `json:"estimated_total"`
}

type rawContract struct {
	Length *string `json:"length"`
	Type   *string `json:"type"`
}

type rawFeatures struct {
	Unit     []string `json:"unit"`
	Building []string `json:"building"`
}

type rawStation struct {
	StationName string   `json:"station_name"`
	WalkTimeMin int      `json:"walk_time_min"`
	Lines       []string `json:"lines"`
}
