package styles

var (
	IconCart         = "\U000F0110" // cart
	IconHeart        = "\uf004"     // heart
	IconBell         = "\uf0f3"     // bell
	IconDatabase     = "\uf1c0"     // database
	IconTag          = "\uf02b"     // tag
	IconStore        = "\U000F0A6F" // storefront
	IconCheck        = "✔"
	IconCross        = "✘"
	IconDot          = "●"
	IconArrowRight   = "→"
	IconStarFilled   = "★"
	IconStarOutlined = "☆"
)

// Stars renders a 0-5 rating as filled and outlined stars.
func Stars(rating float64) string {
	full := int(rating + 0.5)
	if full < 0 {
		full = 0
	}
	if full > 5 {
		full = 5
	}
	out := ""
	for i := range 5 {
		if i < full {
			out += IconStarFilled
		} else {
			out += IconStarOutlined
		}
	}
	return out
}
