package game

import "log"

// CombatConfig tunes player attacks and targeting.
type CombatConfig struct {
	MeleeDamage float64
	MeleeRange  float64 // tiles
	LockOnRange float64 // tiles
}

// DefaultCombatConfig returns the stock tuning.
func DefaultCombatConfig() CombatConfig {
	return CombatConfig{
		MeleeDamage: 1,
		MeleeRange:  1.5,
		LockOnRange: 8,
	}
}

// ToggleLockOn releases the player's lock, or locks on to the best target
// in front of them.
func ToggleLockOn(w *World, p *Player, cfg CombatConfig) *Enemy {
	if p.Dead {
		return nil
	}
	if !p.LockTarget.IsZero() {
		p.LockTarget = NoEnemy
		return nil
	}
	target := FindLockOnTarget(p.Position(), p.Dir.Vector(), cfg.LockOnRange, w.Enemies.Enemies())
	if target == nil {
		return nil
	}
	p.LockTarget = target.Handle
	return target
}

// PlayerAttack swings at the locked target if it is in reach, otherwise at
// the best enemy in front of the player. It returns the enemy hit and
// whether that hit killed it.
func PlayerAttack(w *World, p *Player, cfg CombatConfig) (*Enemy, bool) {
	if p.Dead || p.AttackCooldown > 0 {
		return nil, false
	}
	p.AttackCooldown = AttackCooldown

	var target *Enemy
	if e, ok := w.Enemy(p.LockTarget); ok && e.Pos.Sub(p.Position()).Len() <= cfg.MeleeRange {
		target = e
	} else {
		target = FindLockOnTarget(p.Position(), p.Dir.Vector(), cfg.MeleeRange, w.Enemies.Enemies())
	}
	if target == nil {
		return nil, false
	}

	p.Dir = FaceToward(target.Pos.Sub(p.Position()))
	label := target.Label
	killed := target.ApplyDamage(cfg.MeleeDamage)
	if killed {
		p.Kills++
		if p.LockTarget == target.Handle {
			p.LockTarget = NoEnemy
		}
		log.Printf("[combat] %s defeated %s", p.Name, label)
	}
	return target, killed
}
