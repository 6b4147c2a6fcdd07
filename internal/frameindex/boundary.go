package frameindex

// NthPreviousIntra returns the frame number of the n-th Intra frame at or
// before start, scanning downward and counting start itself. With n=1 a start
// that already sits on an Intra frame is returned untouched; with n=2 the scan
// lands on the Intra frame before that one. When fewer than n Intra frames
// exist between frame 0 and start, frame 0 is returned as a defined floor,
// not an error.
func (ix *Index) NthPreviousIntra(start, n int) (int, error) {
	if ix.Len() == 0 {
		return 0, ErrEmptyIndex
	}

	found := 0
	for f := start; f >= 0; f-- {
		if ix.TypeOf(f) == Intra {
			found++
			if found == n {
				return f, nil
			}
		}
	}
	return 0, nil
}

// LastPredictedBeforeNextIntra scans upward from from (inclusive), tracking
// the most recent Predicted frame seen, and returns that frame the moment an
// Intra frame follows it. An Intra frame encountered before any Predicted
// frame does not stop the scan. When the scan runs past the highest known
// frame, the last Predicted frame seen is returned, or the highest known
// frame itself when the scan saw no Predicted frame at all.
func (ix *Index) LastPredictedBeforeNextIntra(from int) (int, error) {
	if ix.Len() == 0 {
		return 0, ErrEmptyIndex
	}

	maxFrame := ix.MaxFrame()
	lastPredicted := -1

	for f := from; f <= maxFrame; f++ {
		switch ix.TypeOf(f) {
		case Intra:
			if lastPredicted >= 0 {
				return lastPredicted, nil
			}
		case Predicted:
			lastPredicted = f
		}
	}

	if lastPredicted >= 0 {
		return lastPredicted, nil
	}
	return maxFrame, nil
}

// NextPredictedOrIntra returns from unchanged when it is already a Predicted
// or Intra frame, otherwise the nearest higher frame that is. When no such
// frame exists up to the highest known frame, from itself is returned: a
// range that already runs to the end of the stream needs no end padding.
func (ix *Index) NextPredictedOrIntra(from int) (int, error) {
	if ix.Len() == 0 {
		return 0, ErrEmptyIndex
	}

	if t := ix.TypeOf(from); t == Intra || t == Predicted {
		return from, nil
	}

	maxFrame := ix.MaxFrame()
	for f := from + 1; f <= maxFrame; f++ {
		if t := ix.TypeOf(f); t == Intra || t == Predicted {
			return f, nil
		}
	}
	return from, nil
}
