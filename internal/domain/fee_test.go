package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePayable(t *testing.T) {
	tests := []struct {
		name     string
		perks    PerkSelection
		fee      int
		donation int
		want     int
	}{
		{
			name: "base fee only",
			fee:  1,
			want: 1,
		},
		{
			name:  "welcome gift",
			perks: PerkSelection{WelcomeGift: true},
			fee:   1,
			want:  151,
		},
		{
			name:  "jacket",
			perks: PerkSelection{Jacket: true},
			fee:   1,
			want:  451,
		},
		{
			name:     "welcome gift and jacket with donation",
			perks:    PerkSelection{WelcomeGift: true, Jacket: true},
			fee:      1,
			donation: 500,
			want:     1101,
		},
		{
			name:  "hamper alone",
			perks: PerkSelection{SpecialGiftHamper: true},
			fee:   1,
			want:  551,
		},
		{
			name:     "hamper with donation",
			perks:    PerkSelection{SpecialGiftHamper: true},
			fee:      1,
			donation: 1000,
			want:     1551,
		},
		{
			name:     "negative donation counts as zero",
			perks:    PerkSelection{WelcomeGift: true},
			fee:      1,
			donation: -50,
			want:     151,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputePayable(tc.perks, tc.fee, tc.donation)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputePayable_AllIndividualCombinations(t *testing.T) {
	for _, gift := range []bool{false, true} {
		for _, jacket := range []bool{false, true} {
			name := fmt.Sprintf("gift=%v jacket=%v", gift, jacket)
			t.Run(name, func(t *testing.T) {
				perks := PerkSelection{WelcomeGift: gift, Jacket: jacket}
				want := 1 + 200
				if gift {
					want += WelcomeGiftPrice
				}
				if jacket {
					want += JacketPrice
				}

				assert.Equal(t, want, ComputePayable(perks, 1, 200))
			})
		}
	}
}

func TestComputePayable_MonotonicInDonation(t *testing.T) {
	perks := PerkSelection{Jacket: true}

	prev := ComputePayable(perks, 1, 0)
	assert.Positive(t, prev)

	for donation := 1; donation <= 5000; donation += 250 {
		cur := ComputePayable(perks, 1, donation)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestIsDonationPreset(t *testing.T) {
	for _, p := range DonationPresets {
		assert.True(t, IsDonationPreset(p))
	}
	assert.False(t, IsDonationPreset(0))
	assert.False(t, IsDonationPreset(750))
}
