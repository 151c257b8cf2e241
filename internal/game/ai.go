package game

// UpdateEnemies advances every enemy by one tick. AI-enabled enemies chase
// the nearest standing player and hit them on contact; the rest stand
// still.
func (w *World) UpdateEnemies() {
	for _, e := range w.Enemies.Enemies() {
		if e.hitFlash > 0 {
			e.hitFlash--
		}
		if e.attackTimer > 0 {
			e.attackTimer--
		}
		if !e.aiEnabled {
			continue
		}
		target := w.nearestStandingPlayer(e.Pos)
		if target == nil {
			continue
		}

		to := target.Position().Sub(e.Pos)
		dist := to.Len()
		if gap := dist - e.Class.StopDistance; gap > 0 {
			step := min(e.Class.Speed*e.Intensity/TickRate, gap)
			next := e.Pos.Add(to.Normalized().Scale(step))
			if x, y := next.Tile(); w.Arena.IsWalkable(x, y) {
				e.Pos = next
				dist -= step
			}
		}

		if dist <= e.Class.ContactRange && e.attackTimer == 0 {
			target.ApplyDamage(e.ContactDamage())
			e.attackTimer = SecsToTicks(e.Class.AttackInterval)
		}
	}
}

func (w *World) nearestStandingPlayer(from Vec2) *Player {
	var best *Player
	bestDist := 0.0
	for _, p := range w.players {
		if p.Dead {
			continue
		}
		d := p.Position().Sub(from).Len()
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// UpdatePlayers ticks player timers, drops stale lock-ons, turns locked
// players toward their target, and schedules respawns for fallen players.
func (w *World) UpdatePlayers(respawnDelay float64) {
	for _, p := range w.players {
		if p.AttackCooldown > 0 {
			p.AttackCooldown--
		}
		if p.HitFlash > 0 {
			p.HitFlash--
		}
		if p.Dead {
			if !w.Scheduler.Pending(p.respawnTimer) {
				w.scheduleRespawn(p, respawnDelay)
			}
			continue
		}
		if e, ok := w.Enemy(p.LockTarget); ok {
			p.Dir = FaceToward(e.Pos.Sub(p.Position()))
		} else {
			p.LockTarget = NoEnemy
		}
	}
}

func (w *World) scheduleRespawn(p *Player, delay float64) {
	w.Scheduler.Set(&p.respawnTimer, SecsToTicks(delay), LivenessFunc(p.Connected), func() {
		x, y := w.StartPoint(p.Start)
		p.X, p.Y = x, y
		p.HP = p.MaxHP
		p.Dead = false
		p.Dir = DirDown
	})
}
