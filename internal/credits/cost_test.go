package credits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatCosts(t *testing.T) {
	p := Pricing{Avatar: 10, Story: 5, Video: 50, SpeechBase: 2, SpeechBlock: 200}

	assert.Equal(t, int64(10), p.AvatarCost())
	assert.Equal(t, int64(5), p.StoryCost())
	assert.Equal(t, int64(50), p.VideoCost())
}

func TestSpeechCostMinimumOneBase(t *testing.T) {
	p := Pricing{SpeechBase: 2, SpeechBlock: 200}

	assert.Equal(t, int64(2), p.SpeechCost(0))
	assert.Equal(t, int64(2), p.SpeechCost(1))
	assert.Equal(t, int64(2), p.SpeechCost(-5))
}

func TestSpeechCostStepsAtBlockBoundaries(t *testing.T) {
	p := Pricing{SpeechBase: 2, SpeechBlock: 200}

	assert.Equal(t, int64(2), p.SpeechCost(200))
	assert.Equal(t, int64(4), p.SpeechCost(201))
	assert.Equal(t, int64(4), p.SpeechCost(400))
	assert.Equal(t, int64(6), p.SpeechCost(401))
}

func TestSpeechCostNonDecreasing(t *testing.T) {
	p := Pricing{SpeechBase: 3, SpeechBlock: 50}

	prev := int64(0)
	for chars := 0; chars <= 500; chars++ {
		cost := p.SpeechCost(chars)
		assert.GreaterOrEqual(t, cost, p.SpeechBase)
		assert.GreaterOrEqual(t, cost, prev)
		prev = cost
	}
}

func TestSpeechCostZeroBlockDoesNotPanic(t *testing.T) {
	p := Pricing{SpeechBase: 2}

	assert.Equal(t, int64(2), p.SpeechCost(0))
	assert.Equal(t, int64(4), p.SpeechCost(2))
}
