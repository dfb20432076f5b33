package viewport

// sample folds a raw scroll position into the state.
func (s *ScrollState) sample(rawX, rawY int) {
	left := towardsOrigin(rawX, s.X, s.IsScrollingLeft)
	up := towardsOrigin(rawY, s.Y, s.IsScrollingUp)

	// On a flip the turn becomes the previous position, the last point of
	// the run that just ended. The delta since the turn therefore includes
	// the reversing step: 50 then 30 gives turn 50 and delta -20.
	if left != s.IsScrollingLeft {
		s.XTurn = s.X
	}
	if up != s.IsScrollingUp {
		s.YTurn = s.Y
	}

	s.IsScrollingLeft, s.IsScrollingRight = left, !left
	s.IsScrollingUp, s.IsScrollingDown = up, !up
	s.XDTurn = rawX - s.XTurn
	s.YDTurn = rawY - s.YTurn
	s.X, s.Y = rawX, rawY
}

// towardsOrigin reports whether moving from prev to cur heads towards zero.
// An unchanged position keeps the previous direction.
func towardsOrigin(cur, prev int, was bool) bool {
	switch {
	case cur < prev:
		return true
	case cur > prev:
		return false
	case cur == prev:
		return was
	default:
		panic(ErrIndeterminateDirection)
	}
}
