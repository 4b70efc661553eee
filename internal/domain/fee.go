package domain

// Fixed reunion tariff, in taka.
const (
	DefaultRegistrationFee = 1
	WelcomeGiftPrice       = 150
	JacketPrice            = 450
	HamperPrice            = 550
)

// DonationPresets are the quick-amount buttons next to the free-form
// donation entry.
var DonationPresets = []int{500, 1000, 1500, 2000}

// ComputePayable maps a perk selection plus donation to the total
// payable amount. The hamper is priced as a bundle, so the individual
// gift and jacket prices never stack on top of it. Negative donations
// count as zero.
func ComputePayable(perks PerkSelection, registrationFee, donation int) int {
	payable := registrationFee

	if perks.SpecialGiftHamper {
		payable += HamperPrice
	} else {
		if perks.WelcomeGift {
			payable += WelcomeGiftPrice
		}
		if perks.Jacket {
			payable += JacketPrice
		}
	}

	if donation > 0 {
		payable += donation
	}

	return payable
}

// IsDonationPreset reports whether amount is one of the quick-amounts.
func IsDonationPreset(amount int) bool {
	for _, p := range DonationPresets {
		if p == amount {
			return true
		}
	}

	return false
}
