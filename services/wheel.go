package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"wheel-reward-system/models"
)

// Prize is one wedge of the wheel. Probability is in [0,1]; BaseAngle is the
// wedge's position on the rendered wheel and carries no economic weight.
type Prize struct {
	Type        models.PrizeType
	Value       string
	Probability float64
	BaseAngle   int
}

// probScale converts probabilities to integer weights so cumulative sums are
// exact; floating-point drift must not shift wedge boundaries.
const probScale = 1_000_000

// Wedge offsets keep the pointer off the visual separators.
const (
	minAngleOffset = 5
	maxAngleOffset = 40
)

// DefaultPrizes is the production wheel layout.
var DefaultPrizes = []Prize{
	{Type: models.PrizeTypeSpins, Value: "1", Probability: 0.3, BaseAngle: 0},
	{Type: models.PrizeTypePoints, Value: "100", Probability: 0.3, BaseAngle: 45},
	{Type: models.PrizeTypePoints, Value: "500", Probability: 0.2, BaseAngle: 90},
	{Type: models.PrizeTypeSpins, Value: "5", Probability: 0.1, BaseAngle: 135},
	{Type: models.PrizeTypeItem, Value: "iphone", Probability: 0.001, BaseAngle: 180}, // jackpot
	{Type: models.PrizeTypePoints, Value: "50", Probability: 0.099, BaseAngle: 225},
	{Type: models.PrizeTypeSpins, Value: "2", Probability: 0.0, BaseAngle: 270},     // placeholder
	{Type: models.PrizeTypePoints, Value: "1000", Probability: 0.0, BaseAngle: 315}, // placeholder
}

// Wheel draws prizes from a fixed table using crypto/rand. The draw has real
// monetary value, so a statistical PRNG seeded from observable state is not
// acceptable. Stateless and safe for concurrent use.
type Wheel struct {
	prizes []Prize
}

func NewWheel(prizes []Prize) *Wheel {
	if len(prizes) == 0 {
		prizes = DefaultPrizes
	}
	return &Wheel{prizes: prizes}
}

// Draw selects one prize. Zero total weight falls back to the last entry
// deterministically. The returned angle is (base + 5..40) mod 360.
func (w *Wheel) Draw() (Prize, int, int, error) {
	weights := make([]int64, len(w.prizes))
	var total int64
	for i, p := range w.prizes {
		weights[i] = int64(p.Probability * probScale)
		total += weights[i]
	}

	selected := len(w.prizes) - 1
	if total > 0 {
		r, err := randBelow(total)
		if err != nil {
			return Prize{}, 0, 0, fmt.Errorf("drawing prize: %w", err)
		}
		var cum int64
		for i, wt := range weights {
			cum += wt
			if r < cum {
				selected = i
				break
			}
		}
	}

	offset, err := randBelow(maxAngleOffset - minAngleOffset + 1)
	if err != nil {
		return Prize{}, 0, 0, fmt.Errorf("drawing angle offset: %w", err)
	}
	prize := w.prizes[selected]
	angle := (prize.BaseAngle + minAngleOffset + int(offset)) % 360

	return prize, selected, angle, nil
}

func randBelow(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}
