package model

type Category string

const (
	CategoryCashews   Category = "CASHEWS"
	CategoryCloves    Category = "CLOVES"
	CategoryChillies  Category = "CHILLIES"
	CategoryStarAnise Category = "STAR_ANISE"
	CategoryPepper    Category = "PEPPER"
)

var categoryGrades = map[Category][]string{
	CategoryCashews: {
		"W180", "W210", "W240", "W320", "W400",
		"A180", "A210", "A240", "A320", "A400",
		"JK0", "K00", "LWP", "S00 (JH)", "SK0",
		"SSW(WW320)", "SSW1(W300)", "SWP",
		"BB0", "BB1", "BB2", "DP0", "DP1", "DP2",
	},
	CategoryCloves: {
		"Whole Cloves", "Ground Cloves", "Clove Buds",
		"Premium Grade", "Standard Grade", "Commercial Grade",
	},
	CategoryChillies: {
		"Kashmiri Red", "Guntur Red", "Byadgi Red", "Teja Red",
		"Green Chilli", "Dried Red", "Powder Grade", "Whole Dried",
	},
	CategoryStarAnise: {
		"Whole Star", "Broken Star", "Ground Star",
		"Premium Grade", "Standard Grade", "Commercial Grade",
	},
	CategoryPepper: {"Premium", "Standard", "Commercial"},
}

func (c Category) Valid() bool {
	_, ok := categoryGrades[c]
	return ok
}

// Grades returns the grades that may be listed under c, in display order.
func (c Category) Grades() []string {
	grades := categoryGrades[c]
	out := make([]string, len(grades))
	copy(out, grades)
	return out
}

func (c Category) AllowsGrade(grade string) bool {
	for _, g := range categoryGrades[c] {
		if g == grade {
			return true
		}
	}
	return false
}

func Categories() []Category {
	return []Category{CategoryCashews, CategoryCloves, CategoryChillies, CategoryStarAnise, CategoryPepper}
}
