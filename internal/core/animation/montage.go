package animation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/events/bus"
	"github.com/zeusync/climbforge/internal/core/warp"
)

type playing struct {
	id      ClipID
	def     ClipDef
	elapsed float64
}

// Montages plays a single clip at a time. End notifications are enqueued on the
// event bus and reach subscribers on the owner's next Flush.
type Montages struct {
	lib    *Library
	events bus.EventBus
	warps  warp.Source
	source string
	active *playing
}

func NewMontages(lib *Library, events bus.EventBus, warps warp.Source, source string) *Montages {
	return &Montages{lib: lib, events: events, warps: warps, source: source}
}

// Play starts a clip, interrupting the current one. Unknown clips are ignored.
func (m *Montages) Play(id ClipID) bool {
	def, ok := m.lib.Get(id)
	if !ok {
		return false
	}
	if m.active != nil {
		m.finish(true)
	}
	m.active = &playing{id: id, def: def}
	return true
}

// Stop interrupts the current clip.
func (m *Montages) Stop() {
	if m.active != nil {
		m.finish(true)
	}
}

func (m *Montages) IsAnyPlaying() bool {
	return m.active != nil
}

func (m *Montages) IsPlaying(id ClipID) bool {
	return m.active != nil && m.active.id == id
}

func (m *Montages) Active() (ClipID, bool) {
	if m.active == nil {
		return 0, false
	}
	return m.active.id, true
}

// Advance moves the playhead and ends the clip once it starts blending out.
func (m *Montages) Advance(dt float64) {
	if m.active == nil {
		return
	}
	m.active.elapsed += dt
	if m.active.elapsed >= m.active.def.Duration-m.active.def.BlendOut {
		m.finish(false)
	}
}

// RootMotion returns the velocity the active clip imposes on the character. Warp
// windows aim the feet at their target; without a registered target the authored
// velocity is used.
func (m *Montages) RootMotion(root mgl64.Vec3, rot mgl64.Quat, dt float64) (mgl64.Vec3, bool) {
	if m.active == nil || !m.active.def.RootMotion {
		return mgl64.Vec3{}, false
	}
	def := m.active.def
	t := m.active.elapsed / def.Duration
	for _, w := range def.Warps {
		if t >= w.Until {
			continue
		}
		if m.warps == nil {
			break
		}
		target, ok := m.warps.Target(w.Target)
		if !ok {
			break
		}
		remaining := math.Max((w.Until-t)*def.Duration, dt)
		return target.Sub(root).Mul(1 / remaining), true
	}
	return rot.Rotate(def.localVelocity(t)), true
}

func (m *Montages) finish(interrupted bool) {
	p := m.active
	m.active = nil
	if m.events == nil {
		return
	}
	m.events.Enqueue(bus.NewEvent(EventClipEnded, m.source, Ended{
		Clip:        p.id,
		Name:        p.def.Name,
		Interrupted: interrupted,
	}))
}
