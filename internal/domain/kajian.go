package domain

// KajianInfo is one image of a kajian announcement post. Carousel posts
// produce several records sharing the post code with an index suffix.
type KajianInfo struct {
	ID                 string
	Image              string
	InstagramAccountID string
	KajianLocationID   *string
	CityID             string
	Lat                *float64
	Lng                *float64
}

// KajianLocation is a geocoded venue resolved through a Google Maps id.
type KajianLocation struct {
	ID     string
	CityID string
	Lat    float64
	Lng    float64
}
