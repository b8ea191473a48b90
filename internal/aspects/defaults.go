package aspects

// DefaultAspects is the built-in Hindi/Marathi/English keyword table.
func DefaultAspects() []Aspect {
	return []Aspect{
		{Name: "Camera", Keywords: []string{"कैमरा", "camera", "फोटो", "picture", "कॅमेरा", "चित्र", "selfie", "video"}},
		{Name: "Battery", Keywords: []string{"बैटरी", "battery", "बैकअप", "charging", "charge", "power", "बॅटरी"}},
		{Name: "Performance", Keywords: []string{
			"परफॉर्मेंस", "performance", "स्पीड", "speed", "fast",
			"slow", "lag", "gaming", "processor", "ram", "परफॉर्मन्स",
		}},
		{Name: "Display", Keywords: []string{"डिस्प्ले", "display", "स्क्रीन", "screen", "brightness", "color", "clarity", "डिस्पले"}},
		{Name: "Value", Keywords: []string{
			"कीमत", "price", "दाम", "पैसा", "value", "money", "worth",
			"महाग", "किंमत", "costly", "cheap",
		}},
		{Name: "Build Quality", Keywords: []string{
			"बिल्ड", "build", "quality", "design", "डिज़ाइन", "look",
			"body", "material", "finish", "गुणवत्ता", "क्वालिटी",
		}},
		{Name: "Sound", Keywords: []string{"साउंड", "audio", "आवाज", "स्पीकर", "speaker", "sound"}},
	}
}

// DefaultTable builds the table from DefaultAspects.
func DefaultTable() *Table {
	t, err := NewTable(DefaultAspects())
	if err != nil {
		panic(err)
	}
	return t
}
