package styles

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name:        "default",
	BorderStyle: "rounded",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "78",
		Border:     "240",
	},
	Chrome: ChromeColors{
		Header:       "114",
		Footer:       "110",
		SelectedItem: "78",
		Error:        "203",
	},
	Borders: BorderColors{
		ActivePane:   "78",
		InactivePane: "240",
	},
	Cells: CellColors{
		Background: "#1c1c1c",
		Empty:      "#303030",
		Cursor:     "#ffffff",
	},
}
