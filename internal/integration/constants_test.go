package integration_test

const (
	dbName         = "theatre_ticketing"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"

	// Event related constants
	TestEventTitle    = "Hamleti"
	TestEventLocation = "Teatri Kombetar, Tirana"

	// Buyer related constants
	TestBuyerName  = "Blerina Hoxha"
	TestBuyerEmail = "blerina@example.com"
	TestBuyerPhone = "+355 69 123 4567"
)
