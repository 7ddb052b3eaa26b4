package model

// Restaurant is an entry of the selectable outlet list.
type Restaurant struct {
	ID   string `json:"id" koanf:"id"`
	Name string `json:"name" koanf:"name"`
}

// RestaurantProfile describes capacity and staffing ratios of an outlet.
type RestaurantProfile struct {
	ID               string  `json:"id,omitempty"`
	PropertyName     string  `json:"property_name"`
	OutletName       string  `json:"outlet_name"`
	OutletType       string  `json:"outlet_type"`
	TotalSeats       int     `json:"total_seats"`
	BreakevenCovers  *int    `json:"breakeven_covers"`
	TargetCovers     *int    `json:"target_covers"`
	CoversPerServer  float64 `json:"covers_per_server"`
	CoversPerHost    float64 `json:"covers_per_host"`
	CoversPerRunner  float64 `json:"covers_per_runner"`
	CoversPerKitchen float64 `json:"covers_per_kitchen"`
	MinFOHStaff      int     `json:"min_foh_staff"`
	MinBOHStaff      int     `json:"min_boh_staff"`
}
