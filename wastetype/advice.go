// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package wastetype

// Advice tells a resident where a waste stream goes and how to prepare it.
type Advice struct {
	Bin  string   `json:"bin"`
	Tips []string `json:"tips"`
}

var advice = [count]Advice{
	Household: {
		Bin:  "General waste bin (gray/black)",
		Tips: []string{"Ensure waste is properly bagged", "Remove any recyclable components first", "Compact waste to save space"},
	},
	Paper: {
		Bin:  "Paper recycling (blue)",
		Tips: []string{"Remove any plastic components or covers", "Flatten to save space", "Keep dry and clean"},
	},
	Cardboard: {
		Bin:  "Cardboard recycling (blue/brown)",
		Tips: []string{"Break down boxes to save space", "Remove tape and plastic parts", "Keep dry and clean"},
	},
	Glass: {
		Bin:  "Glass container (green/clear/brown)",
		Tips: []string{"Separate by color if required", "Remove caps and lids", "Rinse containers before disposal"},
	},
	Green: {
		Bin:  "Organic waste (green/brown)",
		Tips: []string{"No meat or cooked food in some systems", "No plastic bags, even biodegradable ones", "Cut large branches into smaller pieces"},
	},
	Cans: {
		Bin:  "Metal recycling",
		Tips: []string{"Rinse containers before recycling", "Crush if possible to save space", "Labels can typically stay on"},
	},
	Aluminium: {
		Bin:  "Metal recycling",
		Tips: []string{"Clean off food residue", "Can be crushed to save space", "Collect smaller pieces together"},
	},
	Metal: {
		Bin:  "Metal recycling or collection point",
		Tips: []string{"Larger items may need special disposal", "Remove non-metal components if possible", "Take to recycling center if too large"},
	},
	Textiles: {
		Bin:  "Textile collection bins",
		Tips: []string{"Clean and dry items only", "Pair shoes together", "Separate for donation vs. recycling"},
	},
	Oil: {
		Bin:  "Special collection point",
		Tips: []string{"Never pour down the drain", "Keep in original container if possible", "Take to recycling center or garage"},
	},
	Hazardous: {
		Bin:  "Hazardous waste collection",
		Tips: []string{"Keep in original container if possible", "Never mix different chemicals", "Take to special collection points"},
	},
	Foam: {
		Bin:  "Special recycling or general waste",
		Tips: []string{"Check local rules as they vary widely", "Some recycling centers accept clean foam", "Break into smaller pieces"},
	},
}

// AdviceFor returns the sorting advice for t. Unknown has none.
func AdviceFor(t Type) (Advice, bool) {
	if !t.Valid() {
		return Advice{}, false
	}

	a := advice[t]
	a.Tips = append([]string(nil), a.Tips...)

	return a, true
}
