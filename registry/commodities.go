package registry

// Category tags used by the built-in commodity set.
const (
	Energy         = "energy"
	PreciousMetals = "precious_metals"
	Industrial     = "industrial"
	Grains         = "grains"
	Softs          = "softs"
	Livestock      = "livestock"
)

// CategoryNames are the dashboard headings per category.
var CategoryNames = map[string]string{
	Energy:         "Energy",
	PreciousMetals: "Precious Metals",
	Industrial:     "Industrial",
	Grains:         "Grains",
	Softs:          "Softs",
	Livestock:      "Livestock",
}

// CategoryColors are the chart colors per category.
var CategoryColors = map[string]string{
	Energy:         "#f97316",
	PreciousMetals: "#fbbf24",
	Industrial:     "#a855f7",
	Grains:         "#22c55e",
	Softs:          "#ec4899",
	Livestock:      "#06b6d4",
}

var commodities = []Asset{
	{Symbol: "CL", Name: "WTI Crude Oil", Short: "Crude", Ticker: "CL=F", Category: Energy},
	{Symbol: "BZ", Name: "Brent Crude", Short: "Brent", Ticker: "BZ=F", Category: Energy},
	{Symbol: "NG", Name: "Natural Gas", Short: "NatGas", Ticker: "NG=F", Category: Energy},
	{Symbol: "HO", Name: "Heating Oil", Short: "Heat", Ticker: "HO=F", Category: Energy},

	{Symbol: "GC", Name: "Gold", Short: "Gold", Ticker: "GC=F", Category: PreciousMetals},
	{Symbol: "SI", Name: "Silver", Short: "Silver", Ticker: "SI=F", Category: PreciousMetals},
	{Symbol: "PL", Name: "Platinum", Short: "Plat", Ticker: "PL=F", Category: PreciousMetals},
	{Symbol: "PA", Name: "Palladium", Short: "Pallad", Ticker: "PA=F", Category: PreciousMetals},

	{Symbol: "HG", Name: "Copper", Short: "Copper", Ticker: "HG=F", Category: Industrial},

	{Symbol: "ZC", Name: "Corn", Short: "Corn", Ticker: "ZC=F", Category: Grains},
	{Symbol: "ZW", Name: "Wheat", Short: "Wheat", Ticker: "ZW=F", Category: Grains},
	{Symbol: "ZS", Name: "Soybeans", Short: "Soy", Ticker: "ZS=F", Category: Grains},
	{Symbol: "ZL", Name: "Soybean Oil", Short: "SoyOil", Ticker: "ZL=F", Category: Grains},
	{Symbol: "ZM", Name: "Soybean Meal", Short: "SoyMeal", Ticker: "ZM=F", Category: Grains},

	{Symbol: "KC", Name: "Coffee", Short: "Coffee", Ticker: "KC=F", Category: Softs},
	{Symbol: "SB", Name: "Sugar", Short: "Sugar", Ticker: "SB=F", Category: Softs},
	{Symbol: "CC", Name: "Cocoa", Short: "Cocoa", Ticker: "CC=F", Category: Softs},
	{Symbol: "CT", Name: "Cotton", Short: "Cotton", Ticker: "CT=F", Category: Softs},

	{Symbol: "LE", Name: "Live Cattle", Short: "Cattle", Ticker: "LE=F", Category: Livestock},
	{Symbol: "HE", Name: "Lean Hogs", Short: "Hogs", Ticker: "HE=F", Category: Livestock},
}

// Commodities returns the built-in futures registry.
func Commodities() *Registry {
	r, err := New(commodities)
	if err != nil {
		panic(err) // static data
	}
	return r
}
