package dialogue

import "fmt"

// User-facing notices.
const (
	MsgInvalidSelection = "Invalid selection. Type one of the listed options exactly as shown."
	MsgTimedOut         = "You took too long to respond"
	MsgNoImage          = "No image found for the selected car"
	MsgNoOptions        = "There is nothing to choose from here"
	MsgNotInCatalog     = "That selection is not in the catalog"
)

const (
	titleBrands = "Car Brands"
	titleModels = "Models"
	titleYears  = "Years"
)

func brandPrompt() string {
	return "Please choose a car brand by typing its name"
}

func modelPrompt(brand string) string {
	return fmt.Sprintf("Please choose a car model from %s by typing its name", brand)
}

func yearPrompt(brand, model string) string {
	return fmt.Sprintf("Please choose the year of the %s %s", brand, model)
}
