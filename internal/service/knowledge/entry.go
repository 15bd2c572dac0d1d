package knowledge

// Entry maps a keyword set to a canned response.
type Entry struct {
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
	Response string   `json:"response"`
}

// DefaultEntries returns the Crystal Group knowledge table in matching order.
func DefaultEntries() []Entry {
	return []Entry{
		// company overview
		{
			Keywords: []string{"what is crystal group", "about crystal group", "tell me about crystal"},
			Response: "Crystal Group is a diversified Indian business established in 1962, specializing in cold chain logistics and real estate development across multiple states.",
			Category: "company",
		},
		{
			Keywords: []string{"crystal group company", "who is crystal group"},
			Response: "Founded in 1962 by Murari Lal Agarwal, Crystal Group is a leading Indian company with 62 years of experience in cold chain logistics and real estate.",
			Category: "company",
		},
		{
			Keywords: []string{"crystal business", "what does crystal do"},
			Response: "Crystal Group operates in two main sectors: cold chain logistics with temperature-controlled solutions, and real estate development in Gujarat.",
			Category: "company",
		},

		// cold chain & logistics
		{
			Keywords: []string{"cold chain logistics", "tell me about cold chain"},
			Response: "Crystal Group pioneered cold chain logistics in India since 1962, offering refrigerated containers and warehousing with precise temperature control from -25°C to +25°C.",
			Category: "logistics",
		},
		{
			Keywords: []string{"refrigerated containers", "reefers", "cold storage"},
			Response: "We provide portable refrigerated containers and cold storage solutions maintaining exact temperatures for pharmaceuticals, food, and floriculture industries.",
			Category: "logistics",
		},
		{
			Keywords: []string{"logistics services", "supply chain"},
			Response: "Crystal Group offers end-to-end cold chain solutions including refrigerated transport, warehousing, and real-time monitoring for your supply chain.",
			Category: "logistics",
		},
		{
			Keywords: []string{"warehouse", "warehousing", "storage", "kolkata", "bhubaneswar"},
			Response: "Crystal Group operates modern warehousing facilities in Kolkata and Bhubaneswar with mobile pallet racking, advanced WMS software, and precise temperature control systems.",
			Category: "warehousing",
		},
		{
			Keywords: []string{"real estate", "property", "development", "gujarat", "ahmedabad"},
			Response: "Crystal Group's real estate division, established in 1990 in Gujarat, develops commercial, residential, retail properties, shopping malls, and industrial parks.",
			Category: "real_estate",
		},
		{
			Keywords: []string{"services", "what do you do", "offerings"},
			Response: "Crystal Group provides refrigerated containers, warehousing, dry containers, ISO tanks, transportation services, and comprehensive cold chain solutions.",
			Category: "services",
		},
		{
			Keywords: []string{"mission", "vision", "values"},
			Response: "Our mission is preserving temperature-sensitive goods with care and dedication. Our vision is becoming the most trusted partner in cold chain logistics.",
			Category: "values",
		},
		{
			Keywords: []string{"history", "experience", "years", "founded", "established"},
			Response: "Founded in 1962 by Murari Lal Agarwal in Kolkata, Crystal Group brings over 62 years of trusted experience in cold chain logistics.",
			Category: "history",
		},
		{
			Keywords: []string{"industries", "pharmaceuticals", "food", "floriculture"},
			Response: "Crystal Group serves pharmaceuticals, food & beverage, floriculture, chemicals, and other temperature-sensitive industries with specialized solutions.",
			Category: "industries",
		},
		{
			Keywords: []string{"features", "benefits", "why choose", "advantage"},
			Response: "Crystal Group offers 24/7 support, real-time monitoring, secure solutions, customer-focused services, and 62 years of industry expertise.",
			Category: "benefits",
		},
		{
			Keywords: []string{"career", "jobs", "work", "culture", "join"},
			Response: "Crystal Group fosters a positive workplace valuing collaboration, innovation, and personal growth with opportunities for career advancement.",
			Category: "career",
		},

		// contact & location
		{
			Keywords: []string{"where is crystal group", "crystal group location", "address"},
			Response: "Crystal Group headquarters is in Kolkata since 1962, with warehousing facilities in Bhubaneswar and real estate operations in Gujarat.",
			Category: "contact",
		},
		{
			Keywords: []string{"contact crystal group", "how to contact"},
			Response: "You can reach Crystal Group at our Kolkata headquarters or through our facilities in Bhubaneswar and Gujarat for different services.",
			Category: "contact",
		},
		{
			Keywords: []string{"offices", "branches"},
			Response: "Crystal Group has its main office in Kolkata with operational facilities in Bhubaneswar for logistics and Gujarat for real estate development.",
			Category: "contact",
		},
		{
			Keywords: []string{"technology", "monitoring", "tracking", "software"},
			Response: "Crystal Group uses advanced WMS software, real-time monitoring systems, and modern tracking technology for optimal cold chain management.",
			Category: "technology",
		},
		{
			Keywords: []string{"how old", "years old", "age of company"},
			Response: "Crystal Group is 62 years old, established in 1962 by founder Murari Lal Agarwal in Kolkata.",
			Category: "history",
		},
		{
			Keywords: []string{"temperature range", "how cold", "temperature control"},
			Response: "Our refrigerated solutions maintain precise temperatures from -25°C to +25°C, perfect for pharmaceuticals and perishable goods.",
			Category: "logistics",
		},
		{
			Keywords: []string{"founder", "who founded", "murari lal"},
			Response: "Crystal Group was founded by Murari Lal Agarwal in 1962, starting our journey in cold chain logistics from Kolkata.",
			Category: "history",
		},
	}
}

// Overview is the one-line company summary used when no entry fits better.
const Overview = "Crystal Group is a diversified Indian business established in 1962, specializing in cold chain logistics with facilities in Kolkata and Bhubaneswar, plus real estate development in Gujarat."
