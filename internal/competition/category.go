package competition

type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ArabicTitle string `json:"arabicTitle"`
	AgeLimit    string `json:"ageLimit"`
	Description string `json:"description"`
	JuzCount    int    `json:"juzCount,omitempty"` // 0 when the category is not about memorization
}

const (
	HIFZ_FULL = "hifz-full"
	HIFZ_20   = "hifz-20"
	HIFZ_10   = "hifz-10"
	HIFZ_5    = "hifz-5"
	TILAWAH   = "tilawah"

	// Title shown when a submission references a category we do not know.
	UNKNOWN_CATEGORY_TITLE = "Competition"
)

var categories = [...]Category{
	{
		ID:          HIFZ_FULL,
		Title:       "Hifz of Full Quran",
		ArabicTitle: "حفظ القرآن كاملاً",
		AgeLimit:    "Under 25",
		Description: "Memorization of the entire Holy Quran with Tajweed.",
		JuzCount:    30,
	},
	{
		ID:          HIFZ_20,
		Title:       "20 Juz Category",
		ArabicTitle: "فئة ٢٠ جزء",
		AgeLimit:    "Under 20",
		Description: "Memorization of 20 Juz from the Holy Quran.",
		JuzCount:    20,
	},
	{
		ID:          HIFZ_10,
		Title:       "10 Juz Category",
		ArabicTitle: "فئة ١٠ أجزاء",
		AgeLimit:    "Under 15",
		Description: "Memorization of 10 consecutive Juz.",
		JuzCount:    10,
	},
	{
		ID:          HIFZ_5,
		Title:       "5 Juz Category",
		ArabicTitle: "فئة ٥ أجزاء",
		AgeLimit:    "Under 12",
		Description: "Perfect for young aspiring Huffaz.",
		JuzCount:    5,
	},
	{
		ID:          TILAWAH,
		Title:       "Tilawah (Recitation)",
		ArabicTitle: "التلاوة",
		AgeLimit:    "Open",
		Description: "Focus on beautiful voice, melody, and Maqamat.",
	},
}

// Categories returns a copy of the table in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}

func CategoryByID(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func CategoryTitle(id string) string {
	if c, ok := CategoryByID(id); ok {
		return c.Title
	}
	return UNKNOWN_CATEGORY_TITLE
}

// IsMemorization reports whether the category is judged on Hifz.
func (c Category) IsMemorization() bool {
	return c.JuzCount > 0
}
