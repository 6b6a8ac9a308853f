package styles

// HighContrastTheme favors legibility on low-quality terminals.
var HighContrastTheme = Theme{
	Name:        "high-contrast",
	BorderStyle: "sharp",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Chrome: ChromeColors{
		Header:       "117",
		Footer:       "159",
		SelectedItem: "51",
		Error:        "196",
	},
	Borders: BorderColors{
		ActivePane:   "231",
		InactivePane: "250",
	},
	Cells: CellColors{
		Background: "#000000",
		Empty:      "#3a3a3a",
		Cursor:     "#00ffff",
	},
}
