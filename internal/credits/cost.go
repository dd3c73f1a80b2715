// Package credits holds the pure pricing rules for generation requests.
package credits

// Pricing maps request parameters to credit costs. All functions are total:
// any input yields a defined, non-negative cost.
type Pricing struct {
	Avatar      int64
	Story       int64
	Video       int64
	SpeechBase  int64
	SpeechBlock int
}

func (p Pricing) AvatarCost() int64 { return p.Avatar }
func (p Pricing) StoryCost() int64  { return p.Story }
func (p Pricing) VideoCost() int64  { return p.Video }

// SpeechCost charges one base unit per started block of characters, with a
// minimum of one base unit: base + floor(max(0, chars-1)/block) * base.
func (p Pricing) SpeechCost(chars int) int64 {
	block := p.SpeechBlock
	if block <= 0 {
		block = 1
	}
	if chars < 1 {
		return p.SpeechBase
	}
	return p.SpeechBase + int64((chars-1)/block)*p.SpeechBase
}
