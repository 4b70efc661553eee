package domain

type JacketSize string

const (
	JacketS    JacketSize = "S"
	JacketM    JacketSize = "M"
	JacketL    JacketSize = "L"
	JacketXL   JacketSize = "XL"
	JacketXXL  JacketSize = "XXL"
	JacketXXXL JacketSize = "XXXL"
)

var jacketSizes = map[JacketSize]bool{
	JacketS:    true,
	JacketM:    true,
	JacketL:    true,
	JacketXL:   true,
	JacketXXL:  true,
	JacketXXXL: true,
}

func (s JacketSize) Valid() bool {
	return jacketSizes[s]
}

// PerkSelection is the mutually-exclusive set of physical add-ons. The
// special gift hamper bundles a jacket, so a jacket size is required
// whenever either the jacket or the hamper is on.
type PerkSelection struct {
	WelcomeGift       bool       `json:"welcome_gift"`
	Jacket            bool       `json:"jacket"`
	JacketSize        JacketSize `json:"jacket_size,omitempty"`
	SpecialGiftHamper bool       `json:"special_gift_hamper"`
}

// NeedsJacketSize reports whether the current selection makes the
// jacket size a required field.
func (p PerkSelection) NeedsJacketSize() bool {
	return p.Jacket || p.SpecialGiftHamper
}
