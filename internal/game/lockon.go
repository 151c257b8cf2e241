package game

// MinLockOnDot is the smallest facing alignment a lock-on candidate needs.
const MinLockOnDot = 0.3

// FindLockOnTarget picks the enemy a player facing along facing from from
// would lock on to. Candidates must be within maxRange and at least
// MinLockOnDot in front; among them the best dot / (dist/maxRange + 0.1)
// wins, so a well aligned enemy beats a slightly closer one off to the side.
func FindLockOnTarget(from, facing Vec2, maxRange float64, candidates []*Enemy) *Enemy {
	if maxRange <= 0 {
		return nil
	}
	facing = facing.Normalized()
	var best *Enemy
	bestScore := 0.0
	for _, e := range candidates {
		if !e.Alive() {
			continue
		}
		to := e.Pos.Sub(from)
		dist := to.Len()
		if dist > maxRange {
			continue
		}
		dot := 1.0 // standing on top of it counts as straight ahead
		if dist > 1e-9 {
			dot = facing.Dot(to.Scale(1 / dist))
		}
		if dot < MinLockOnDot {
			continue
		}
		score := dot / (dist/maxRange + 0.1)
		if best == nil || score > bestScore {
			best, bestScore = e, score
		}
	}
	return best
}

// FaceToward returns the cardinal direction closest to to.
func FaceToward(to Vec2) Direction {
	if to.X == 0 && to.Y == 0 {
		return DirDown
	}
	if abs64(to.X) >= abs64(to.Y) {
		if to.X < 0 {
			return DirLeft
		}
		return DirRight
	}
	if to.Y < 0 {
		return DirUp
	}
	return DirDown
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
