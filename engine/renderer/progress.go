package renderer

// RenderProgress counts the samples accumulated per pixel since the last reset.
type RenderProgress struct {
	accumulated uint32
}

// NextFrame decides what the next compute dispatch contributes and advances the counter.
// The first frame after a reset clears the image buffer; once the budget is reached,
// frames contribute zero samples and the counter stops.
//
// Parameters:
//   - s: the active sampling parameters
//
// Returns:
//   - GPUSamplingParams: the uniform data for this frame
func (p *RenderProgress) NextFrame(s SamplingParams) GPUSamplingParams {
	current := p.accumulated
	next := current + s.NumSamplesPerPixel

	switch {
	case current == 0:
		p.accumulated = next
		return GPUSamplingParams{
			NumSamplesPerPixel:         s.NumSamplesPerPixel,
			NumBounces:                 s.NumBounces,
			AccumulatedSamplesPerPixel: next,
			ClearAccumulatedSamples:    1,
		}
	case current <= s.MaxSamplesPerPixel && s.NumSamplesPerPixel <= s.MaxSamplesPerPixel-current:
		p.accumulated = next
		return GPUSamplingParams{
			NumSamplesPerPixel:         s.NumSamplesPerPixel,
			NumBounces:                 s.NumBounces,
			AccumulatedSamplesPerPixel: next,
		}
	default:
		return GPUSamplingParams{
			NumBounces:                 s.NumBounces,
			AccumulatedSamplesPerPixel: current,
		}
	}
}

// Reset restarts accumulation.
func (p *RenderProgress) Reset() {
	p.accumulated = 0
}

// AccumulatedSamples returns the samples accumulated per pixel since the last reset.
func (p *RenderProgress) AccumulatedSamples() uint32 {
	return p.accumulated
}
