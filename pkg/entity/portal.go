package entity

import "realmshard/pkg/geometry"

// PortalRadius is the fixed interaction collision radius of a portal.
const PortalRadius = 0.5

// TargetKind identifies which kind of instance a portal leads to.
type TargetKind string

const (
	TargetNexus   TargetKind = "nexus"
	TargetRealm   TargetKind = "realm"
	TargetDungeon TargetKind = "dungeon"
	TargetVault   TargetKind = "vault"
)

// blink cadence thresholds per spec §4.5.
const (
	blinkSteadyThreshold = 30
	blinkSlowThreshold   = 10
	blinkFastThreshold   = 3

	blinkSlowInterval   = 0.5
	blinkMediumInterval = 0.25
	blinkFastInterval   = 0.1
)

// Portal is a transfer point to another instance, with optional expiry and
// a tiered blink-visibility schedule as expiry approaches.
type Portal struct {
	Kernel

	TargetInstanceID string
	TargetKind       TargetKind
	DisplayName      string

	HasExpiry bool
	ExpiresAt float64 // absolute instance-clock seconds

	Visible    bool
	blinkTimer float64
}

// NewPortal constructs a permanent (non-expiring) portal.
func NewPortal(pos geometry.Vec2, targetInstanceID string, kind TargetKind, name string) *Portal {
	return &Portal{
		Kernel:           NewKernel(pos, PortalRadius),
		TargetInstanceID: targetInstanceID,
		TargetKind:       kind,
		DisplayName:      name,
		Visible:          true,
	}
}

// NewExpiringPortal constructs a portal that self-removes at spawnedAt +
// lifetimeSecs.
func NewExpiringPortal(pos geometry.Vec2, targetInstanceID string, kind TargetKind, name string, spawnedAt, lifetimeSecs float64) *Portal {
	p := NewPortal(pos, targetInstanceID, kind, name)
	p.HasExpiry = true
	p.ExpiresAt = spawnedAt + lifetimeSecs
	return p
}

// Update advances the blink-visibility schedule and self-removes the
// portal at expiry.
func (p *Portal) Update(dt, now float64) {
	if !p.HasExpiry {
		return
	}
	remaining := p.ExpiresAt - now
	if remaining <= 0 {
		p.MarkRemove()
		return
	}

	interval := blinkSlowInterval
	switch {
	case remaining < blinkFastThreshold:
		interval = blinkFastInterval
	case remaining < blinkSlowThreshold:
		interval = blinkMediumInterval
	case remaining >= blinkSteadyThreshold:
		p.Visible = true
		return
	}

	p.blinkTimer += dt
	if p.blinkTimer >= interval {
		p.blinkTimer -= interval
		p.Visible = !p.Visible
	}
}
