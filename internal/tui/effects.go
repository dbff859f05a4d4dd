package tui

import (
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// Celebration lifetime bounds. Particles expire individually; the overlay
// dismisses itself once the last one is gone.
const (
	minParticleLife = 1500 * time.Millisecond
	maxParticleLife = 4 * time.Second
	particleCount   = 48
)

var particleChars = []string{"*", "+", "·", "o", "✦", "✧"}

var particleColors = []lipgloss.Color{
	lipgloss.Color("203"), // red
	lipgloss.Color("220"), // yellow
	lipgloss.Color("83"),  // green
	lipgloss.Color("75"),  // blue
	lipgloss.Color("212"), // pink
}

// Particle is one ephemeral confetti cell. Purely cosmetic: particles carry
// no task data and never feed back into the store.
type Particle struct {
	ID      uuid.UUID
	X, Y    float64
	VX, VY  float64
	Char    string
	Color   lipgloss.Color
	Expires time.Time
}

// Celebration is the transient confetti overlay spawned on full-list
// completion.
type Celebration struct {
	particles []Particle
	last      time.Time
}

// NewCelebration spawns a burst of particles fanning out from the center of
// a width x height screen.
func NewCelebration(width, height int, now time.Time) *Celebration {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	cx := float64(width) / 2
	cy := float64(height) / 2

	particles := make([]Particle, 0, particleCount)
	for i := 0; i < particleCount; i++ {
		life := minParticleLife + time.Duration(rand.Int63n(int64(maxParticleLife-minParticleLife)))
		particles = append(particles, Particle{
			ID:      uuid.New(),
			X:       cx,
			Y:       cy,
			VX:      (rand.Float64() - 0.5) * 40,
			VY:      (rand.Float64() - 0.7) * 14,
			Char:    particleChars[rand.Intn(len(particleChars))],
			Color:   particleColors[rand.Intn(len(particleColors))],
			Expires: now.Add(life),
		})
	}

	return &Celebration{particles: particles, last: now}
}

// Advance moves particles by the elapsed time and prunes expired ones. It
// reports whether the celebration is still active.
func (c *Celebration) Advance(now time.Time) bool {
	dt := now.Sub(c.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	c.last = now

	const gravity = 9.0

	live := c.particles[:0]
	for _, p := range c.particles {
		if !now.Before(p.Expires) {
			continue
		}
		p.X += p.VX * dt
		p.Y += p.VY * dt
		p.VY += gravity * dt
		live = append(live, p)
	}
	c.particles = live
	return len(c.particles) > 0
}

// Active reports whether any particles remain.
func (c *Celebration) Active() bool {
	return len(c.particles) > 0
}

// Render draws the current particle positions onto a width x height grid of
// spaces.
func (c *Celebration) Render(width, height int) string {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	type cell struct {
		char  string
		color lipgloss.Color
	}
	grid := make(map[[2]int]cell, len(c.particles))
	for _, p := range c.particles {
		x, y := int(p.X), int(p.Y)
		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		grid[[2]int{x, y}] = cell{char: p.Char, color: p.Color}
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if cl, ok := grid[[2]int{x, y}]; ok {
				b.WriteString(lipgloss.NewStyle().Foreground(cl.color).Render(cl.char))
			} else {
				b.WriteString(" ")
			}
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
